package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrSessionExpired is returned when a protected call observes a 401.
	// The session store has already been cleared when this surfaces.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidCredentials is returned by authentication endpoints on a
	// rejected login or refresh; the session store is left untouched
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound is returned when the target resource does not exist or is
	// not owned by the current user
	ErrNotFound = errors.New("not found")

	// ErrAlreadyImported is returned when importing a repository that is
	// already tracked
	ErrAlreadyImported = errors.New("repository already imported")
)

// ValidationError reports a request rejected before or by the server for
// malformed input. Client-side checks fail with this error before any network
// call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpstreamError reports a failure in a service behind the API (GitHub,
// Google, the review model). The operation is abandoned; retry is the
// caller's decision.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure (%d): %s", e.StatusCode, e.Message)
}

// APIError is the fallback for error responses with no more specific mapping
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// errorBody is the standard error response shape
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// decodeError maps an error response onto the SDK error taxonomy
func decodeError(resp *http.Response) error {
	var body errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return &ValidationError{Message: body.Error}
	case http.StatusUnauthorized:
		// Protected-path 401s never reach here; the transport converts
		// them to ErrSessionExpired. This is a rejected credential.
		return fmt.Errorf("%s: %w", body.Error, ErrInvalidCredentials)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", body.Error, ErrNotFound)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &UpstreamError{StatusCode: resp.StatusCode, Message: body.Error}
	default:
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error, Details: body.Details}
	}
}
