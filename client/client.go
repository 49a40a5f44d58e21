package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// Client talks to the codelens API. All methods are safe for concurrent use.
type Client struct {
	baseURL    string
	session    *SessionStore
	transport  *SessionTransport
	httpClient *http.Client
}

// NewClient creates a client with a fresh session store
func NewClient(baseURL string) *Client {
	return NewClientWithSession(baseURL, NewSessionStore())
}

// NewClientWithSession creates a client over an existing session store, so
// multiple clients can share one session
func NewClientWithSession(baseURL string, session *SessionStore) *Client {
	transport := &SessionTransport{Session: session}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		session:   session,
		transport: transport,
		httpClient: &http.Client{
			Transport: transport,
			// Redirects carry flow state (OAuth authorize URLs); surface
			// them instead of following
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Session returns the underlying session store
func (c *Client) Session() *SessionStore {
	return c.session
}

// SetSessionExpiredHook installs the callback invoked when a protected call
// observes a 401 and the session is cleared
func (c *Client) SetSessionExpiredHook(fn func()) {
	c.transport.OnSessionExpired = fn
}

// do issues a JSON request and decodes the response into out when non-nil
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// http.Client wraps transport errors in *url.Error
		if errors.Is(err, ErrSessionExpired) {
			return ErrSessionExpired
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
