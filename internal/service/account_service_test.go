package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/codelens/internal/db"
	"github.com/codelens/internal/domain"
	"github.com/codelens/internal/identity"
)

func setupAccountService(t *testing.T, providers ...identity.Provider) (domain.AccountService, *db.DB, func()) {
	t.Helper()

	database, cleanup := setupTestDB(t)
	service := NewAccountService(database, testTokenIssuer(), testRegistry(providers...),
		identity.NewStateCodec("test-secret"), slog.Default())
	return service, database, cleanup
}

func createTestUser(t *testing.T, database *db.DB, email string) *db.User {
	t.Helper()

	user := db.NewUser(email, "")
	if err := database.CreateUser(user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// stateFromAuthorizeURL extracts the state parameter from a fakeProvider
// authorize URL
func stateFromAuthorizeURL(t *testing.T, authorizeURL string) string {
	t.Helper()

	parsed, err := url.Parse(authorizeURL)
	if err != nil {
		t.Fatalf("Failed to parse authorize URL: %v", err)
	}
	state := parsed.Query().Get("state")
	if state == "" {
		t.Fatal("Expected state parameter in authorize URL")
	}
	return state
}

func TestAccountService_ConnectFlowLinksAccount(t *testing.T) {
	gh := &fakeProvider{
		name:  "github",
		token: "upstream-token",
		profile: &identity.Profile{
			UID:      "gh-42",
			Username: "octocat",
			Email:    "octo@x.com",
		},
	}
	service, database, cleanup := setupAccountService(t, gh)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, database, "a@x.com")

	authorizeURL, err := service.BeginConnect(ctx, user.ID, "github")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(authorizeURL, "https://provider.test/authorize") {
		t.Fatalf("Unexpected authorize URL: %s", authorizeURL)
	}

	result, err := service.CompleteCallback(ctx, "github", stateFromAuthorizeURL(t, authorizeURL), "auth-code")
	if err != nil {
		t.Fatalf("Expected callback to succeed, got %v", err)
	}
	if result.Intent != identity.IntentConnect {
		t.Errorf("Expected connect intent, got %s", result.Intent)
	}
	if result.Pair != nil {
		t.Error("Expected no credential pair from a connect callback")
	}
	if result.Account.Username != "octocat" {
		t.Errorf("Expected profile data on account, got %+v", result.Account)
	}

	grouped, err := service.ListLinkedAccounts(ctx, user.ID)
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(grouped["github"]) != 1 {
		t.Fatalf("Expected one linked github account, got %d", len(grouped["github"]))
	}

	token, err := database.GetProviderToken(result.Account.ID)
	if err != nil || token == nil {
		t.Fatalf("Expected provider token stored, got %v, %v", token, err)
	}
	if token.AccessToken != "upstream-token" {
		t.Errorf("Expected upstream token persisted, got %s", token.AccessToken)
	}
}

func TestAccountService_ConnectRejectsForeignIdentity(t *testing.T) {
	gh := &fakeProvider{
		name:    "github",
		token:   "upstream-token",
		profile: &identity.Profile{UID: "gh-42", Username: "octocat"},
	}
	service, database, cleanup := setupAccountService(t, gh)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, database, "owner@x.com")
	intruder := createTestUser(t, database, "intruder@x.com")

	// First user claims the identity
	authorizeURL, err := service.BeginConnect(ctx, owner.ID, "github")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := service.CompleteCallback(ctx, "github", stateFromAuthorizeURL(t, authorizeURL), "code"); err != nil {
		t.Fatalf("Expected first connect to succeed, got %v", err)
	}

	// Second user attempts to claim the same identity
	authorizeURL, err = service.BeginConnect(ctx, intruder.ID, "github")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	_, err = service.CompleteCallback(ctx, "github", stateFromAuthorizeURL(t, authorizeURL), "code")
	if !errors.Is(err, domain.ErrAccountTaken) {
		t.Fatalf("Expected ErrAccountTaken, got %v", err)
	}

	// No mutation: the intruder has no linked accounts, the owner keeps theirs
	grouped, err := service.ListLinkedAccounts(ctx, intruder.ID)
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(grouped["github"]) != 0 {
		t.Errorf("Expected no accounts for second user, got %d", len(grouped["github"]))
	}
	account, err := database.GetLinkedAccount("github", "gh-42")
	if err != nil || account == nil {
		t.Fatalf("Expected identity still linked, got %v, %v", account, err)
	}
	if account.UserID != owner.ID {
		t.Errorf("Expected identity to stay with first user, got %s", account.UserID)
	}
}

func TestAccountService_LoginFlowCreatesUserAndPair(t *testing.T) {
	gh := &fakeProvider{
		name:  "github",
		token: "upstream-token",
		profile: &identity.Profile{
			UID:      "gh-42",
			Username: "octocat",
			Email:    "octo@x.com",
			Name:     "Octo Cat",
		},
	}
	service, database, cleanup := setupAccountService(t, gh)
	defer cleanup()

	ctx := context.Background()
	authorizeURL, err := service.BeginLogin(ctx, "github")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	result, err := service.CompleteCallback(ctx, "github", stateFromAuthorizeURL(t, authorizeURL), "code")
	if err != nil {
		t.Fatalf("Expected login callback to succeed, got %v", err)
	}
	if result.Intent != identity.IntentLogin {
		t.Errorf("Expected login intent, got %s", result.Intent)
	}
	if result.Pair == nil || result.Pair.Access == "" || result.Pair.Refresh == "" {
		t.Fatal("Expected credential pair from login callback")
	}

	user, err := database.GetUserByEmail("octo@x.com")
	if err != nil || user == nil {
		t.Fatalf("Expected user created, got %v, %v", user, err)
	}

	// A second login through the same identity resolves the same user
	authorizeURL, _ = service.BeginLogin(ctx, "github")
	again, err := service.CompleteCallback(ctx, "github", stateFromAuthorizeURL(t, authorizeURL), "code")
	if err != nil {
		t.Fatalf("Expected repeat login to succeed, got %v", err)
	}
	if again.Account.UserID != user.ID {
		t.Errorf("Expected same user, got %s and %s", user.ID, again.Account.UserID)
	}
}

func TestAccountService_LoginBlockedForUnlinkedExistingEmail(t *testing.T) {
	gh := &fakeProvider{
		name:    "github",
		token:   "upstream-token",
		profile: &identity.Profile{UID: "gh-42", Email: "claimed@x.com"},
	}
	service, database, cleanup := setupAccountService(t, gh)
	defer cleanup()

	ctx := context.Background()
	createTestUser(t, database, "claimed@x.com")

	authorizeURL, err := service.BeginLogin(ctx, "github")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	_, err = service.CompleteCallback(ctx, "github", stateFromAuthorizeURL(t, authorizeURL), "code")
	if !domain.IsConflictError(err) {
		t.Fatalf("Expected conflict for unlinked existing email, got %v", err)
	}

	// No silent link was created
	account, err := database.GetLinkedAccount("github", "gh-42")
	if err != nil {
		t.Fatalf("Failed to query account: %v", err)
	}
	if account != nil {
		t.Error("Expected identity to remain unlinked")
	}
}

func TestAccountService_CallbackRejectsWrongProviderState(t *testing.T) {
	gh := &fakeProvider{name: "github", token: "tok", profile: &identity.Profile{UID: "gh-42"}}
	google := &fakeProvider{name: "google", token: "tok", profile: &identity.Profile{UID: "g-1"}}
	service, _, cleanup := setupAccountService(t, gh, google)
	defer cleanup()

	ctx := context.Background()
	authorizeURL, err := service.BeginLogin(ctx, "github")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// State minted for github must not complete a google callback
	_, err = service.CompleteCallback(ctx, "google", stateFromAuthorizeURL(t, authorizeURL), "code")
	if !domain.IsValidationError(err) {
		t.Errorf("Expected validation error for mismatched state, got %v", err)
	}
}

func TestAccountService_UnlinkNotFoundNoMutation(t *testing.T) {
	gh := &fakeProvider{
		name:    "github",
		token:   "upstream-token",
		profile: &identity.Profile{UID: "gh-42", Username: "octocat"},
	}
	service, database, cleanup := setupAccountService(t, gh)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, database, "a@x.com")

	authorizeURL, _ := service.BeginConnect(ctx, user.ID, "github")
	if _, err := service.CompleteCallback(ctx, "github", stateFromAuthorizeURL(t, authorizeURL), "code"); err != nil {
		t.Fatalf("Failed to link account: %v", err)
	}

	// Unlinking an account that is not linked fails and mutates nothing
	if err := service.Unlink(ctx, user.ID, "github", "no-such-uid"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("Expected ErrAccountNotFound, got %v", err)
	}
	grouped, _ := service.ListLinkedAccounts(ctx, user.ID)
	if len(grouped["github"]) != 1 {
		t.Errorf("Expected linked account untouched, got %d accounts", len(grouped["github"]))
	}

	// Unlinking the real account removes it
	if err := service.Unlink(ctx, user.ID, "github", "gh-42"); err != nil {
		t.Fatalf("Expected unlink to succeed, got %v", err)
	}
	grouped, _ = service.ListLinkedAccounts(ctx, user.ID)
	if len(grouped["github"]) != 0 {
		t.Errorf("Expected no linked accounts, got %d", len(grouped["github"]))
	}
}

func TestAccountService_SetLabel(t *testing.T) {
	gh := &fakeProvider{
		name:    "github",
		token:   "upstream-token",
		profile: &identity.Profile{UID: "gh-42", Username: "octocat"},
	}
	service, database, cleanup := setupAccountService(t, gh)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, database, "a@x.com")

	authorizeURL, _ := service.BeginConnect(ctx, user.ID, "github")
	if _, err := service.CompleteCallback(ctx, "github", stateFromAuthorizeURL(t, authorizeURL), "code"); err != nil {
		t.Fatalf("Failed to link account: %v", err)
	}

	if err := service.SetLabel(ctx, user.ID, "github", "gh-42", strings.Repeat("x", 101)); !domain.IsValidationError(err) {
		t.Errorf("Expected validation error for oversized label, got %v", err)
	}

	if err := service.SetLabel(ctx, user.ID, "github", "gh-42", "work account"); err != nil {
		t.Fatalf("Expected label update to succeed, got %v", err)
	}
	account, err := database.GetLinkedAccountForUser(user.ID, "github", "gh-42")
	if err != nil || account == nil {
		t.Fatalf("Failed to reload account: %v", err)
	}
	if account.Label != "work account" {
		t.Errorf("Expected label 'work account', got '%s'", account.Label)
	}

	if err := service.SetLabel(ctx, user.ID, "github", "no-such-uid", "x"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
}
