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

// accountService implements the AccountService interface
type accountService struct {
	database  *db.DB
	tokens    *auth.TokenIssuer
	providers *identity.Registry
	state     *identity.StateCodec
	logger    *slog.Logger
}

// NewAccountService creates a new account linking service
func NewAccountService(database *db.DB, tokens *auth.TokenIssuer, providers *identity.Registry, state *identity.StateCodec, logger *slog.Logger) domain.AccountService {
	return &accountService{
		database:  database,
		tokens:    tokens,
		providers: providers,
		state:     state,
		logger:    logger,
	}
}

// ListLinkedAccounts returns the user's linked accounts grouped by provider
func (s *accountService) ListLinkedAccounts(ctx context.Context, userID string) (map[string][]*db.LinkedAccount, error) {
	accounts, err := s.database.ListLinkedAccountsByUser(userID)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("list linked accounts", err)
	}

	grouped := make(map[string][]*db.LinkedAccount)
	for _, account := range accounts {
		grouped[account.Provider] = append(grouped[account.Provider], account)
	}
	return grouped, nil
}

// BeginConnect builds the authorization URL for linking a new identity to
// the already-authenticated user
func (s *accountService) BeginConnect(ctx context.Context, userID, providerName string) (string, error) {
	provider, ok := s.providers.Get(providerName)
	if !ok {
		return "", domain.ErrUnknownProvider
	}

	state, err := s.state.Encode(identity.State{
		Provider: providerName,
		Intent:   identity.IntentConnect,
		UserID:   userID,
	})
	if err != nil {
		return "", domain.NewDomainError("STATE_ENCODE_FAILED", "failed to build oauth state", err)
	}
	return provider.AuthorizeURL(state), nil
}

// BeginLogin builds the authorization URL for a federated login flow
func (s *accountService) BeginLogin(ctx context.Context, providerName string) (string, error) {
	provider, ok := s.providers.Get(providerName)
	if !ok {
		return "", domain.ErrUnknownProvider
	}

	state, err := s.state.Encode(identity.State{
		Provider: providerName,
		Intent:   identity.IntentLogin,
	})
	if err != nil {
		return "", domain.NewDomainError("STATE_ENCODE_FAILED", "failed to build oauth state", err)
	}
	return provider.AuthorizeURL(state), nil
}

// CompleteCallback finishes an OAuth flow from the provider redirect
func (s *accountService) CompleteCallback(ctx context.Context, providerName, stateStr, code string) (*domain.CallbackResult, error) {
	provider, ok := s.providers.Get(providerName)
	if !ok {
		return nil, domain.ErrUnknownProvider
	}

	state, err := s.state.Decode(stateStr)
	if err != nil || state.Provider != providerName {
		return nil, domain.WrapValidationFailed("invalid or expired oauth state", err)
	}

	upstreamToken, err := provider.Exchange(ctx, code)
	if err != nil {
		return nil, domain.WrapUpstream(providerName, err)
	}
	profile, err := provider.FetchProfile(ctx, upstreamToken)
	if err != nil {
		return nil, domain.WrapUpstream(providerName, err)
	}

	if state.Intent == identity.IntentConnect {
		return s.completeConnect(ctx, state.UserID, providerName, profile, upstreamToken)
	}
	return s.completeLogin(ctx, providerName, profile, upstreamToken)
}

// completeConnect links the identity to the authenticated user. Identities
// already claimed by a different user are rejected without mutation.
func (s *accountService) completeConnect(ctx context.Context, userID, providerName string, profile *identity.Profile, upstreamToken string) (*domain.CallbackResult, error) {
	existing, err := s.database.GetLinkedAccount(providerName, profile.UID)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get linked account", err)
	}

	var account *db.LinkedAccount
	switch {
	case existing != nil && existing.UserID != userID:
		return nil, domain.ErrAccountTaken
	case existing != nil:
		// Reconnecting an already-linked identity refreshes its profile and token
		existing.Username = profile.Username
		existing.Email = profile.Email
		existing.Picture = profile.Picture
		if err := s.database.UpdateLinkedAccountProfile(existing); err != nil {
			return nil, domain.WrapDatabaseOperation("update linked account", err)
		}
		account = existing
	default:
		account = db.NewLinkedAccount(userID, providerName, profile.UID)
		account.Username = profile.Username
		account.Email = profile.Email
		account.Picture = profile.Picture
		if err := s.database.CreateLinkedAccount(account); err != nil {
			if db.IsUniqueConstraintError(err) {
				return nil, domain.ErrAccountTaken
			}
			return nil, domain.WrapDatabaseOperation("create linked account", err)
		}
	}

	if err := s.database.UpsertProviderToken(account.ID, upstreamToken); err != nil {
		return nil, domain.WrapDatabaseOperation("store provider token", err)
	}

	s.logger.InfoContext(ctx, "account linked", "user_id", userID, "provider", providerName, "uid", profile.UID)
	return &domain.CallbackResult{Intent: identity.IntentConnect, Account: account}, nil
}

// completeLogin authenticates through the linked identity, creating a user
// on first login. An unlinked identity whose email already belongs to a
// local user is blocked: silent account merging would let a provider
// identity hijack an email/password account.
func (s *accountService) completeLogin(ctx context.Context, providerName string, profile *identity.Profile, upstreamToken string) (*domain.CallbackResult, error) {
	account, err := s.database.GetLinkedAccount(providerName, profile.UID)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get linked account", err)
	}

	var userID string
	if account != nil {
		userID = account.UserID
	} else {
		if profile.Email != "" {
			existingUser, err := s.database.GetUserByEmail(profile.Email)
			if err != nil {
				return nil, domain.WrapDatabaseOperation("get user", err)
			}
			if existingUser != nil {
				return nil, domain.NewDomainError(domain.ErrEmailTaken.Code,
					"an account with this email already exists; log in first, then connect this provider from account settings", nil)
			}
		}

		user := db.NewUser(profile.Email, "")
		user.IsGoogleAccount = providerName == db.ProviderGoogle
		user.PictureURL = profile.Picture
		user.FirstName, user.LastName = splitName(profile.Name)
		if err := s.database.CreateUser(user); err != nil {
			return nil, domain.WrapDatabaseOperation("create user", err)
		}

		account = db.NewLinkedAccount(user.ID, providerName, profile.UID)
		account.Username = profile.Username
		account.Email = profile.Email
		account.Picture = profile.Picture
		if err := s.database.CreateLinkedAccount(account); err != nil {
			return nil, domain.WrapDatabaseOperation("create linked account", err)
		}
		userID = user.ID
		s.logger.InfoContext(ctx, "user created from oauth login", "user_id", userID, "provider", providerName)
	}

	if err := s.database.UpsertProviderToken(account.ID, upstreamToken); err != nil {
		return nil, domain.WrapDatabaseOperation("store provider token", err)
	}
	if err := s.database.UpdateLastLogin(userID, time.Now()); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "user_id", userID, "error", err)
	}

	pair, err := s.tokens.IssuePair(userID)
	if err != nil {
		return nil, domain.NewDomainError("TOKEN_ISSUE_FAILED", "failed to issue tokens", err)
	}
	return &domain.CallbackResult{Intent: identity.IntentLogin, Account: account, Pair: pair}, nil
}

// Unlink removes a linked account. Unlinking the user's last login method is
// deliberately not prevented here.
func (s *accountService) Unlink(ctx context.Context, userID, provider, uid string) error {
	account, err := s.database.GetLinkedAccountForUser(userID, provider, uid)
	if err != nil {
		return domain.WrapDatabaseOperation("get linked account", err)
	}
	if account == nil {
		return domain.ErrAccountNotFound
	}

	if err := s.database.DeleteLinkedAccount(account.ID); err != nil {
		return domain.WrapDatabaseOperation("delete linked account", err)
	}

	s.logger.InfoContext(ctx, "account unlinked", "user_id", userID, "provider", provider, "uid", uid)
	return nil
}

// SetLabel sets the user-assigned label on a linked account
func (s *accountService) SetLabel(ctx context.Context, userID, provider, uid, label string) error {
	if err := validation.ValidateLabel(label); err != nil {
		return domain.WrapValidationFailed(err.Error(), nil)
	}

	account, err := s.database.GetLinkedAccountForUser(userID, provider, uid)
	if err != nil {
		return domain.WrapDatabaseOperation("get linked account", err)
	}
	if account == nil {
		return domain.ErrAccountNotFound
	}

	return s.database.UpdateLinkedAccountLabel(account.ID, label)
}
