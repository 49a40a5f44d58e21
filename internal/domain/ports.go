package domain

import (
	"context"

	"github.com/codelens/internal/auth"
	"github.com/codelens/internal/db"
	"github.com/codelens/internal/github"
	"github.com/codelens/internal/identity"
)

// ============================================================================
// Primary Ports (Application Use Cases)
// ============================================================================

// AuthService defines the primary port for authentication and profile use cases
type AuthService interface {
	Login(ctx context.Context, email, password string) (*auth.CredentialPair, error)
	LoginWithFederatedToken(ctx context.Context, provider, accessToken string) (*auth.CredentialPair, *db.User, error)
	Signup(ctx context.Context, req SignupRequest) (*auth.CredentialPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.CredentialPair, error)
	GetProfile(ctx context.Context, userID string) (*db.User, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*db.User, error)
}

// AccountService defines the primary port for external account linking use cases
type AccountService interface {
	ListLinkedAccounts(ctx context.Context, userID string) (map[string][]*db.LinkedAccount, error)
	// BeginConnect builds the provider authorization URL with connect intent
	// so the callback links the identity to the authenticated user
	BeginConnect(ctx context.Context, userID, provider string) (string, error)
	// BeginLogin builds the provider authorization URL with login intent
	BeginLogin(ctx context.Context, provider string) (string, error)
	// CompleteCallback finishes either flow variant from the provider redirect
	CompleteCallback(ctx context.Context, provider, state, code string) (*CallbackResult, error)
	Unlink(ctx context.Context, userID, provider, uid string) error
	SetLabel(ctx context.Context, userID, provider, uid, label string) error
}

// RepoService defines the primary port for repository import/sync use cases
type RepoService interface {
	// ListAvailable lists the user's live GitHub repositories through a
	// linked account; accountUID empty means the first linked GitHub account
	ListAvailable(ctx context.Context, userID, accountUID string) ([]github.Repository, error)
	Import(ctx context.Context, userID string, req ImportRepositoryRequest) (*db.ImportedRepository, error)
	List(ctx context.Context, userID string) ([]*db.ImportedRepository, error)
	Get(ctx context.Context, userID, repoID string) (*db.ImportedRepository, error)
	// ListContents lists the entries at a path of a live repository; an
	// empty path lists the repository root
	ListContents(ctx context.Context, userID, accountUID, owner, name, path string) ([]github.ContentEntry, error)
	// GetFileContent fetches a single decoded file from a live repository
	GetFileContent(ctx context.Context, userID, accountUID, owner, name, path string) (string, error)
	// ConnectionStatus reports whether the user has linked GitHub accounts
	ConnectionStatus(ctx context.Context, userID string) (*GitHubConnectionStatus, error)
	// RequestSync transitions the repository to syncing and enqueues the
	// sync job. Requests while already syncing are not rejected.
	RequestSync(ctx context.Context, userID, repoID string) (*db.ImportedRepository, error)
	Delete(ctx context.Context, userID, repoID string) error
}

// SubmissionService defines the primary port for code submission and review use cases
type SubmissionService interface {
	Create(ctx context.Context, userID string, req CreateSubmissionRequest) (*db.Submission, error)
	List(ctx context.Context, userID string, filter db.SubmissionFilter) ([]*db.Submission, int, error)
	Get(ctx context.Context, userID, submissionID string) (*db.Submission, error)
	Update(ctx context.Context, userID, submissionID string, req UpdateSubmissionRequest) (*db.Submission, error)
	Delete(ctx context.Context, userID, submissionID string) error
	GetReview(ctx context.Context, userID, submissionID string) (*db.Review, []*db.ReviewIssue, error)
}

// ============================================================================
// Request / Result Types
// ============================================================================

// SignupRequest carries a registration attempt
type SignupRequest struct {
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

// UpdateProfileRequest carries a partial profile update; nil fields are left
// unchanged
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

// ImportRepositoryRequest carries a repository import attempt
type ImportRepositoryRequest struct {
	AccountUID string `json:"account_uid"`
	Owner      string `json:"owner"`
	Name       string `json:"name"`
	Branch     string `json:"branch"`
	Private    bool   `json:"private"`
}

// CreateSubmissionRequest carries a new code submission
type CreateSubmissionRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// UpdateSubmissionRequest carries a partial submission update
type UpdateSubmissionRequest struct {
	Language *string `json:"language"`
	Code     *string `json:"code"`
}

// GitHubConnectionStatus reports the user's linked GitHub accounts
type GitHubConnectionStatus struct {
	Connected bool                `json:"connected"`
	Accounts  []*db.LinkedAccount `json:"accounts"`
}

// CallbackResult is the outcome of a completed OAuth callback
type CallbackResult struct {
	Intent  identity.Intent
	Account *db.LinkedAccount
	// Pair is set for login-intent callbacks only
	Pair *auth.CredentialPair
}
