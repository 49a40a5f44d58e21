package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/codelens/internal/auth"
	"github.com/codelens/internal/db"
	"github.com/codelens/internal/domain"
	"github.com/codelens/internal/identity"
	"github.com/codelens/internal/validation"
)

// authService implements the AuthService interface
type authService struct {
	database  *db.DB
	tokens    *auth.TokenIssuer
	providers *identity.Registry
	logger    *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(database *db.DB, tokens *auth.TokenIssuer, providers *identity.Registry, logger *slog.Logger) domain.AuthService {
	return &authService{
		database:  database,
		tokens:    tokens,
		providers: providers,
		logger:    logger,
	}
}

// Login exchanges email/password credentials for a fresh credential pair
func (s *authService) Login(ctx context.Context, email, password string) (*auth.CredentialPair, error) {
	user, err := s.database.GetUserByEmail(email)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get user", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.InfoContext(ctx, "login rejected", "email", email)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.database.UpdateLastLogin(user.ID, time.Now()); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "user_id", user.ID, "error", err)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, domain.NewDomainError("TOKEN_ISSUE_FAILED", "failed to issue tokens", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return pair, nil
}

// LoginWithFederatedToken exchanges an upstream provider access token for a
// credential pair, creating the local user on first login
func (s *authService) LoginWithFederatedToken(ctx context.Context, providerName, accessToken string) (*auth.CredentialPair, *db.User, error) {
	if accessToken == "" {
		return nil, nil, domain.WrapValidationFailed("access token is required", nil)
	}

	provider, ok := s.providers.Get(providerName)
	if !ok {
		return nil, nil, domain.ErrUnknownProvider
	}

	profile, err := provider.FetchProfile(ctx, accessToken)
	if err != nil {
		// The upstream rejects garbage tokens; treat that as bad credentials
		// rather than an upstream outage
		s.logger.InfoContext(ctx, "federated token rejected", "provider", providerName, "error", err)
		return nil, nil, domain.ErrInvalidCredentials
	}
	if profile.Email == "" {
		return nil, nil, domain.WrapValidationFailed("email not provided by "+providerName, nil)
	}

	user, err := s.database.GetUserByEmail(profile.Email)
	if err != nil {
		return nil, nil, domain.WrapDatabaseOperation("get user", err)
	}
	if user == nil {
		user = db.NewUser(profile.Email, "")
		user.IsGoogleAccount = providerName == db.ProviderGoogle
		user.PictureURL = profile.Picture
		user.FirstName, user.LastName = splitName(profile.Name)
		if err := s.database.CreateUser(user); err != nil {
			return nil, nil, domain.WrapDatabaseOperation("create user", err)
		}
		s.logger.InfoContext(ctx, "user created from federated login", "user_id", user.ID, "provider", providerName)
	} else if providerName == db.ProviderGoogle && !user.IsGoogleAccount {
		user.IsGoogleAccount = true
		if user.FirstName == "" && user.LastName == "" {
			user.FirstName, user.LastName = splitName(profile.Name)
		}
		if err := s.database.UpdateUserProfile(user); err != nil {
			return nil, nil, domain.WrapDatabaseOperation("update user", err)
		}
	}

	if err := s.database.UpdateLastLogin(user.ID, time.Now()); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "user_id", user.ID, "error", err)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, nil, domain.NewDomainError("TOKEN_ISSUE_FAILED", "failed to issue tokens", err)
	}
	return pair, user, nil
}

// Signup registers a new user and returns a fresh credential pair
func (s *authService) Signup(ctx context.Context, req domain.SignupRequest) (*auth.CredentialPair, error) {
	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, domain.WrapValidationFailed(err.Error(), nil)
	}
	if err := validation.ValidatePasswordPair(req.Password1, req.Password2); err != nil {
		return nil, domain.WrapValidationFailed(err.Error(), nil)
	}

	existing, err := s.database.GetUserByEmail(req.Email)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get user", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password1)
	if err != nil {
		return nil, domain.NewDomainError("PASSWORD_HASH_FAILED", "failed to hash password", err)
	}

	user := db.NewUser(req.Email, hash)
	if err := s.database.CreateUser(user); err != nil {
		if db.IsUniqueConstraintError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, domain.WrapDatabaseOperation("create user", err)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, domain.NewDomainError("TOKEN_ISSUE_FAILED", "failed to issue tokens", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return pair, nil
}

// Refresh exchanges a valid refresh token for a fresh credential pair
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*auth.CredentialPair, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.database.GetUserByID(userID)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get user", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidToken
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, domain.NewDomainError("TOKEN_ISSUE_FAILED", "failed to issue tokens", err)
	}
	return pair, nil
}

// GetProfile returns the user's profile
func (s *authService) GetProfile(ctx context.Context, userID string) (*db.User, error) {
	user, err := s.database.GetUserByID(userID)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies a partial profile update. Email is read-only.
func (s *authService) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*db.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		if len(*req.Bio) > 500 {
			return nil, domain.WrapValidationFailed("bio must be 500 characters or less", nil)
		}
		user.Bio = *req.Bio
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	if err := s.database.UpdateUserProfile(user); err != nil {
		return nil, domain.WrapDatabaseOperation("update user", err)
	}
	return user, nil
}

// splitName splits a display name into first/last on the first space
func splitName(name string) (string, string) {
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return name, ""
}
