package client

import "net/http"

// publicPaths are the endpoints reachable without credentials. 401 responses
// from these paths signal rejected credentials, not an expired session, and
// pass through unmodified.
var publicPaths = map[string]struct{}{
	"/api/auth/login/":         {},
	"/api/auth/registration/":  {},
	"/api/auth/google/":        {},
	"/api/auth/token/refresh/": {},
	"/api/health":              {},
}

func isPublicPath(path string) bool {
	_, ok := publicPaths[path]
	return ok
}

// SessionTransport is an http.RoundTripper that attaches the stored access
// token to protected requests and converts a protected 401 into a cleared
// session plus ErrSessionExpired.
type SessionTransport struct {
	// Base is the underlying transport; http.DefaultTransport when nil
	Base http.RoundTripper

	// Session supplies the access token and is cleared on expiry
	Session *SessionStore

	// OnSessionExpired, when set, is invoked after the session is cleared.
	// This is the redirect-to-login seam. Concurrent in-flight 401s each
	// invoke it; the hook must tolerate duplicates.
	OnSessionExpired func()
}

// RoundTrip implements http.RoundTripper
func (t *SessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if isPublicPath(req.URL.Path) {
		return base.RoundTrip(req)
	}

	// RoundTrippers must not mutate the caller's request
	authed := req.Clone(req.Context())
	if pair, ok := t.Session.Credentials(); ok {
		authed.Header.Set("Authorization", "Bearer "+pair.Access)
	}

	resp, err := base.RoundTrip(authed)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		t.Session.ClearCredentials()
		if t.OnSessionExpired != nil {
			t.OnSessionExpired()
		}
		return nil, ErrSessionExpired
	}

	return resp, nil
}
