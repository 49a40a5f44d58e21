package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment   string
	ServerAddress string
	DatabasePath  string
	FrontendURL   string
	Auth          AuthConfig
	OAuth         OAuthConfig
	LLM           LLMConfig
	Jobs          JobsConfig
	CORS          CORSConfig
}

// AuthConfig holds token issuance configuration
type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// OAuthConfig holds the external identity provider credentials
type OAuthConfig struct {
	CallbackBaseURL string // base URL for provider redirect URIs (e.g. http://localhost:8080)
	GitHub          ProviderCredentials
	Google          ProviderCredentials
}

// ProviderCredentials holds one OAuth application's client credentials
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
}

// LLMConfig holds the upstream AI review API configuration
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	PromptsPath string // optional YAML file overriding the built-in prompt templates
}

// JobsConfig holds background worker configuration
type JobsConfig struct {
	PollInterval   time.Duration
	StaleThreshold time.Duration
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	corsOrigins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	allowedOrigins := parseCommaSeparatedList(corsOrigins)

	return &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		DatabasePath:  getEnv("DATABASE_PATH", "./data/codelens.db"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", "change-me-in-production-secret-key"),
			Issuer:     getEnv("JWT_ISSUER", "codelens"),
			AccessTTL:  getDurationEnv("ACCESS_TOKEN_TTL_MINUTES", 30) * time.Minute,
			RefreshTTL: getDurationEnv("REFRESH_TOKEN_TTL_HOURS", 24*7) * time.Hour,
		},
		OAuth: OAuthConfig{
			CallbackBaseURL: getEnv("OAUTH_CALLBACK_BASE_URL", "http://localhost:8080"),
			GitHub: ProviderCredentials{
				ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
				ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
			},
			Google: ProviderCredentials{
				ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
				ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			},
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      os.Getenv("LLM_API_KEY"),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			PromptsPath: os.Getenv("LLM_PROMPTS_PATH"),
		},
		Jobs: JobsConfig{
			PollInterval:   getDurationEnv("JOB_POLL_INTERVAL_SECONDS", 2) * time.Second,
			StaleThreshold: getDurationEnv("JOB_STALE_THRESHOLD_MINUTES", 15) * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: allowedOrigins,
		},
	}, nil
}

// parseCommaSeparatedList splits a comma-separated string into a slice
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return []string{}
	}

	items := strings.Split(s, ",")
	result := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}

	return result
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv returns the environment variable parsed as an integer
// duration unit count, or a default
func getDurationEnv(key string, defaultValue int) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return time.Duration(defaultValue)
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return time.Duration(defaultValue)
	}
	return time.Duration(parsed)
}
