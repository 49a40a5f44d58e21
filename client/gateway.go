package client

import (
	"context"
	"net/http"
)

const minPasswordLength = 8

// Login authenticates with email and password. On success the credential
// pair is installed into the session store; on failure the store is
// untouched.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return &ValidationError{Message: "email and password are required"}
	}

	var pair CredentialPair
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login/", body, &pair); err != nil {
		return err
	}

	c.session.SetCredentials(pair)
	return nil
}

// Signup registers a new account. Password rules are checked before any
// network call: length of at least 8 characters and matching confirmation.
func (c *Client) Signup(ctx context.Context, email, password, confirm string) error {
	if email == "" {
		return &ValidationError{Message: "email is required"}
	}
	if len(password) < minPasswordLength {
		return &ValidationError{Message: "password must be at least 8 characters"}
	}
	if password != confirm {
		return &ValidationError{Message: "passwords do not match"}
	}

	var pair CredentialPair
	body := map[string]string{"email": email, "password1": password, "password2": confirm}
	if err := c.do(ctx, http.MethodPost, "/api/auth/registration/", body, &pair); err != nil {
		return err
	}

	c.session.SetCredentials(pair)
	return nil
}

// LoginWithFederatedToken authenticates with an access token obtained from an
// external provider's own flow (Google). On success the issued pair is
// installed and the resolved user returned.
func (c *Client) LoginWithFederatedToken(ctx context.Context, provider, token string) (*User, error) {
	if token == "" {
		return nil, &ValidationError{Message: "provider token is required"}
	}

	var result struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
		User    *User  `json:"user"`
	}
	body := map[string]string{"access_token": token}
	if err := c.do(ctx, http.MethodPost, "/api/auth/"+provider+"/", body, &result); err != nil {
		return nil, err
	}

	c.session.SetCredentials(CredentialPair{Access: result.Access, Refresh: result.Refresh})
	return result.User, nil
}

// Refresh exchanges the stored refresh token for a fresh pair
func (c *Client) Refresh(ctx context.Context) error {
	pair, ok := c.session.Credentials()
	if !ok {
		return ErrInvalidCredentials
	}

	var fresh CredentialPair
	body := map[string]string{"refresh": pair.Refresh}
	if err := c.do(ctx, http.MethodPost, "/api/auth/token/refresh/", body, &fresh); err != nil {
		return err
	}

	c.session.SetCredentials(fresh)
	return nil
}

// Logout drops the stored credential pair
func (c *Client) Logout() {
	c.session.ClearCredentials()
}

// GetProfile returns the authenticated user's profile
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfileRequest carries a partial profile update; nil fields are left
// unchanged
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Role      *string `json:"role,omitempty"`
}

// UpdateProfile applies a partial update to the authenticated user's profile
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile/", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
