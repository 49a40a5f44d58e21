package identity

import (
	"context"
	"fmt"
	"strconv"

	gogithub "github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/codelens/internal/config"
)

// GitHubProvider implements the Provider interface for GitHub OAuth
type GitHubProvider struct {
	oauth *oauth2.Config

	// newClient builds the API client for a token; replaced in tests
	newClient func(ctx context.Context, token string) *gogithub.Client
}

// NewGitHubProvider creates a GitHub provider from client credentials
func NewGitHubProvider(creds config.ProviderCredentials, callbackBaseURL string) *GitHubProvider {
	return &GitHubProvider{
		oauth: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     githuboauth.Endpoint,
			RedirectURL:  callbackBaseURL + "/api/auth/callback/github",
			Scopes:       []string{"read:user", "user:email", "repo"},
		},
		newClient: func(ctx context.Context, token string) *gogithub.Client {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
			return gogithub.NewClient(oauth2.NewClient(ctx, ts))
		},
	}
}

// Name returns the provider identifier
func (p *GitHubProvider) Name() string {
	return "github"
}

// AuthorizeURL builds the GitHub authorization URL
func (p *GitHubProvider) AuthorizeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for a GitHub access token
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("github code exchange: %w", err)
	}
	return token.AccessToken, nil
}

// FetchProfile resolves the GitHub user behind an access token. Users with a
// private email expose an empty email on the profile; the user:email scope
// lets us fall back to the emails listing.
func (p *GitHubProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	client := p.newClient(ctx, accessToken)
	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("github user lookup: %w", err)
	}

	email := user.GetEmail()
	if email == "" {
		email, err = p.lookupEmail(ctx, client)
		if err != nil {
			return nil, err
		}
	}

	return &Profile{
		UID:      strconv.FormatInt(user.GetID(), 10),
		Username: user.GetLogin(),
		Email:    email,
		Name:     user.GetName(),
		Picture:  user.GetAvatarURL(),
	}, nil
}

// lookupEmail resolves a usable address from the emails listing: the
// verified primary first, then any verified address. Users with no verified
// address get their GitHub noreply alias so account creation still has a
// unique email.
func (p *GitHubProvider) lookupEmail(ctx context.Context, client *gogithub.Client) (string, error) {
	emails, _, err := client.Users.ListEmails(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("github email lookup: %w", err)
	}

	var verified string
	for _, entry := range emails {
		if !entry.GetVerified() {
			continue
		}
		if entry.GetPrimary() {
			return entry.GetEmail(), nil
		}
		if verified == "" {
			verified = entry.GetEmail()
		}
	}
	if verified != "" {
		return verified, nil
	}

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("github user lookup: %w", err)
	}
	return fmt.Sprintf("%d+%s@users.noreply.github.com", user.GetID(), user.GetLogin()), nil
}
