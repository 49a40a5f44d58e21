package identity

import (
	"context"

	"github.com/codelens/internal/config"
)

// Intent distinguishes the two OAuth flow variants: a login flow creates a
// session, a connect flow links the external identity to the already
// authenticated user.
type Intent string

const (
	IntentLogin   Intent = "login"
	IntentConnect Intent = "connect"
)

// Profile is the normalized identity returned by a provider after a
// completed OAuth exchange
type Profile struct {
	UID      string
	Username string
	Email    string
	Name     string
	Picture  string
}

// Provider is an external OAuth identity provider (GitHub, Google)
type Provider interface {
	// Name returns the provider identifier used in URLs and storage
	Name() string
	// AuthorizeURL builds the provider authorization endpoint URL for the
	// given opaque state
	AuthorizeURL(state string) string
	// Exchange trades an authorization code for an upstream access token
	Exchange(ctx context.Context, code string) (string, error)
	// FetchProfile resolves the identity behind an upstream access token
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// Registry holds the configured providers keyed by name
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds the provider set from OAuth configuration. Providers
// without client credentials are still registered; the upstream rejects
// their flows, which surfaces as an upstream error.
func NewRegistry(cfg config.OAuthConfig) *Registry {
	registry := &Registry{providers: make(map[string]Provider)}
	registry.Register(NewGitHubProvider(cfg.GitHub, cfg.CallbackBaseURL))
	registry.Register(NewGoogleProvider(cfg.Google, cfg.CallbackBaseURL))
	return registry
}

// Register adds a provider to the registry
func (r *Registry) Register(provider Provider) {
	r.providers[provider.Name()] = provider
}

// Get returns the provider with the given name, or false
func (r *Registry) Get(name string) (Provider, bool) {
	provider, ok := r.providers[name]
	return provider, ok
}
