package db

import (
	"time"

	"github.com/google/uuid"
)

// Provider names for linked external accounts
const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// Sync status values for imported repositories
const (
	SyncStatusPending = "pending"
	SyncStatusSyncing = "syncing"
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// Review status values
const (
	ReviewStatusPending   = "pending"
	ReviewStatusRunning   = "running"
	ReviewStatusCompleted = "completed"
	ReviewStatusFailed    = "failed"
)

// Job status values
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// User represents a registered user account
type User struct {
	ID              string     `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	PasswordHash    string     `json:"-" db:"password_hash"` // empty for federated-only accounts
	FirstName       string     `json:"first_name" db:"first_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	Bio             string     `json:"bio" db:"bio"`
	Role            string     `json:"role" db:"role"`
	PictureURL      string     `json:"picture_url" db:"picture_url"`
	IsGoogleAccount bool       `json:"is_google_account" db:"is_google_account"`
	DateJoined      time.Time  `json:"date_joined" db:"date_joined"`
	LastLogin       *time.Time `json:"last_login" db:"last_login"`
}

// FullName returns the display name for the user
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}

// NewUser creates a new user with a generated ID
func NewUser(email, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		DateJoined:   time.Now(),
	}
}

// LinkedAccount represents an external identity-provider account connected
// to a user. (provider, uid) is globally unique: an external identity
// belongs to at most one user.
type LinkedAccount struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	Provider  string    `json:"provider" db:"provider"`
	UID       string    `json:"uid" db:"uid"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Label     string    `json:"label" db:"label"`
	Picture   string    `json:"picture" db:"picture"`
	CreatedAt time.Time `json:"date_joined" db:"created_at"`
}

// NewLinkedAccount creates a new linked account with a generated ID
func NewLinkedAccount(userID, provider, uid string) *LinkedAccount {
	return &LinkedAccount{
		ID:        uuid.New().String(),
		UserID:    userID,
		Provider:  provider,
		UID:       uid,
		CreatedAt: time.Now(),
	}
}

// ProviderToken holds the upstream OAuth access token for a linked account.
// Required for GitHub API calls during repository import and sync.
type ProviderToken struct {
	AccountID   string    `json:"-" db:"account_id"`
	AccessToken string    `json:"-" db:"access_token"`
	UpdatedAt   time.Time `json:"-" db:"updated_at"`
}

// ImportedRepository represents an external repository reference tracked
// through the sync status machine: pending -> syncing -> success|failed.
type ImportedRepository struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"-" db:"user_id"`
	AccountUID    string     `json:"account_uid" db:"account_uid"`
	Owner         string     `json:"owner" db:"owner"`
	Name          string     `json:"name" db:"name"`
	Branch        string     `json:"branch" db:"branch"`
	Private       bool       `json:"private" db:"private"`
	SyncStatus    string     `json:"sync_status" db:"sync_status"`
	LastSyncedAt  *time.Time `json:"last_synced_at" db:"last_synced_at"`
	LastSyncError *string    `json:"last_sync_error" db:"last_sync_error"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// NewImportedRepository creates a repository record in the initial pending state
func NewImportedRepository(userID, accountUID, owner, name, branch string, private bool) *ImportedRepository {
	now := time.Now()
	return &ImportedRepository{
		ID:         uuid.New().String(),
		UserID:     userID,
		AccountUID: accountUID,
		Owner:      owner,
		Name:       name,
		Branch:     branch,
		Private:    private,
		SyncStatus: SyncStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Submission represents a user's code submission awaiting or holding a review
type Submission struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	Language  string    `json:"language" db:"language"`
	Code      string    `json:"code" db:"code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewSubmission creates a new submission with a generated ID
func NewSubmission(userID, language, code string) *Submission {
	now := time.Now()
	return &Submission{
		ID:        uuid.New().String(),
		UserID:    userID,
		Language:  language,
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Review holds the AI-generated feedback for a submission. A submission owns
// zero or one review.
type Review struct {
	ID           string    `json:"id" db:"id"`
	SubmissionID string    `json:"submission_id" db:"submission_id"`
	Status       string    `json:"status" db:"status"`
	Score        int       `json:"score" db:"score"`
	Summary      string    `json:"summary" db:"summary"`
	ErrorMessage *string   `json:"error_message" db:"error_message"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewReview creates a pending review for a submission
func NewReview(submissionID string) *Review {
	now := time.Now()
	return &Review{
		ID:           uuid.New().String(),
		SubmissionID: submissionID,
		Status:       ReviewStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ReviewIssue is a single finding within a review
type ReviewIssue struct {
	ID       string `json:"id" db:"id"`
	ReviewID string `json:"-" db:"review_id"`
	Severity string `json:"severity" db:"severity"` // info, warning, error
	Category string `json:"category" db:"category"` // bug, style, security, performance
	Line     *int   `json:"line" db:"line"`
	Message  string `json:"message" db:"message"`
}

// Job represents an asynchronous unit of work (repository sync, review analysis)
type Job struct {
	ID           string     `json:"id" db:"id"`
	Type         string     `json:"type" db:"type"`
	Payload      string     `json:"payload" db:"payload"` // JSON-encoded
	Status       string     `json:"status" db:"status"`
	ClaimedBy    *string    `json:"claimed_by" db:"claimed_by"`
	ErrorMessage *string    `json:"error_message" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	StartedAt    *time.Time `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at" db:"completed_at"`
}

// NewJob creates a pending job with a generated ID
func NewJob(jobType, payload string) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   payload,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
	}
}
