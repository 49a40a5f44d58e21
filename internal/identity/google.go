package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/codelens/internal/config"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProvider implements the Provider interface for Google OAuth
type GoogleProvider struct {
	oauth       *oauth2.Config
	httpClient  *http.Client
	userinfoURL string // overridable in tests
}

// NewGoogleProvider creates a Google provider from client credentials
func NewGoogleProvider(creds config.ProviderCredentials, callbackBaseURL string) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     googleoauth.Endpoint,
			RedirectURL:  callbackBaseURL + "/api/auth/callback/google",
			Scopes:       []string{"openid", "email", "profile"},
		},
		httpClient:  &http.Client{},
		userinfoURL: googleUserinfoURL,
	}
}

// Name returns the provider identifier
func (p *GoogleProvider) Name() string {
	return "google"
}

// AuthorizeURL builds the Google authorization URL
func (p *GoogleProvider) AuthorizeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for a Google access token
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("google code exchange: %w", err)
	}
	return token.AccessToken, nil
}

// FetchProfile resolves the Google user behind an access token via the
// userinfo endpoint. Also serves federated login, where the client supplies
// a Google access token directly.
func (p *GoogleProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo: unexpected status %d", resp.StatusCode)
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	if info.ID == "" {
		return nil, fmt.Errorf("google userinfo: missing user id")
	}

	return &Profile{
		UID:      info.ID,
		Username: info.Email,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
	}, nil
}
