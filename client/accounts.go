package client

import (
	"context"
	"fmt"
	"net/http"
)

const maxLabelLength = 100

// ListLinkedAccounts returns the user's linked external accounts grouped by
// provider name
func (c *Client) ListLinkedAccounts(ctx context.Context) (map[string][]LinkedAccount, error) {
	var accounts map[string][]LinkedAccount
	if err := c.do(ctx, http.MethodGet, "/api/auth/accounts/", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// BeginConnect starts the connect flow for a provider and returns the
// provider authorization URL the browser must visit. The flow carries connect
// intent, so completing it links the identity to the current user instead of
// creating a session.
func (c *Client) BeginConnect(ctx context.Context, provider string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/connect/"+provider, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", decodeError(resp)
	}
	location := resp.Header.Get("Location")
	if resp.StatusCode != http.StatusFound || location == "" {
		return "", fmt.Errorf("unexpected connect response: %s", resp.Status)
	}
	return location, nil
}

// Unlink removes a linked account. Fails with ErrNotFound when no such
// account is linked to the current user; nothing is mutated in that case.
func (c *Client) Unlink(ctx context.Context, provider, uid string) error {
	body := map[string]string{"provider": provider, "uid": uid}
	return c.do(ctx, http.MethodPost, "/api/auth/accounts/unlink/", body, nil)
}

// SetLabel sets the display label on a linked account. Labels longer than
// 100 characters are rejected before any network call.
func (c *Client) SetLabel(ctx context.Context, provider, uid, label string) error {
	if len(label) > maxLabelLength {
		return &ValidationError{Message: fmt.Sprintf("label must be at most %d characters", maxLabelLength)}
	}

	body := map[string]string{"provider": provider, "uid": uid, "label": label}
	return c.do(ctx, http.MethodPost, "/api/auth/accounts/label/", body, nil)
}
