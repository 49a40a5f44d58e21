package client

import "time"

// User is the profile shape returned by the API
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Bio             string     `json:"bio"`
	Role            string     `json:"role"`
	PictureURL      string     `json:"picture_url"`
	IsGoogleAccount bool       `json:"is_google_account"`
	DateJoined      time.Time  `json:"date_joined"`
	LastLogin       *time.Time `json:"last_login"`
}

// LinkedAccount is an external identity connected to the user
type LinkedAccount struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	UID      string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Label    string `json:"label"`
	Picture  string `json:"picture"`
}

// ContentEntry is one file or directory in a repository contents listing
type ContentEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Size int    `json:"size"`
	SHA  string `json:"sha"`
}

// FileContent is a single decoded repository file
type FileContent struct {
	Content string `json:"content"`
	Path    string `json:"path"`
}

// GitHubConnectionStatus reports the user's linked GitHub accounts
type GitHubConnectionStatus struct {
	Connected bool            `json:"connected"`
	Accounts  []LinkedAccount `json:"accounts"`
}

// Sync status values reported for imported repositories
const (
	SyncStatusPending = "pending"
	SyncStatusSyncing = "syncing"
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// ImportedRepository is a tracked external repository and its sync state
type ImportedRepository struct {
	ID            string     `json:"id"`
	AccountUID    string     `json:"account_uid"`
	Owner         string     `json:"owner"`
	Name          string     `json:"name"`
	Branch        string     `json:"branch"`
	Private       bool       `json:"private"`
	SyncStatus    string     `json:"sync_status"`
	LastSyncedAt  *time.Time `json:"last_synced_at"`
	LastSyncError *string    `json:"last_sync_error"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// GitHubRepository is a live repository listed from the provider
type GitHubRepository struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	FullName      string     `json:"full_name"`
	Owner         string     `json:"owner"`
	Private       bool       `json:"private"`
	Description   string     `json:"description"`
	Language      string     `json:"language"`
	DefaultBranch string     `json:"default_branch"`
	UpdatedAt     *time.Time `json:"updated_at"`
}
