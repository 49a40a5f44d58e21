package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/codelens/internal/db"
	"github.com/codelens/internal/github"
)

// RepoSyncHandler performs the server-side half of the repository sync
// state machine: the repository is already in the syncing state when the
// job runs; the handler drives it to success or failed.
type RepoSyncHandler struct {
	db     *db.DB
	github *github.Client
	logger *slog.Logger
}

// NewRepoSyncHandler creates a repository sync handler
func NewRepoSyncHandler(database *db.DB, githubClient *github.Client, logger *slog.Logger) *RepoSyncHandler {
	return &RepoSyncHandler{
		db:     database,
		github: githubClient,
		logger: logger,
	}
}

// Handle executes a repository sync job
func (h *RepoSyncHandler) Handle(ctx context.Context, job *db.Job) error {
	var payload RepoSyncPayload
	if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
		return fmt.Errorf("invalid repo sync payload: %w", err)
	}

	repo, err := h.db.GetImportedRepository(payload.RepoID)
	if err != nil {
		return fmt.Errorf("load repository: %w", err)
	}
	if repo == nil {
		// Repository deleted between enqueue and processing; nothing to sync
		h.logger.InfoContext(ctx, "repository gone, skipping sync", "repo_id", payload.RepoID)
		return nil
	}

	token, err := h.lookupToken(repo)
	if err != nil {
		return h.failSync(ctx, repo, err)
	}

	sha, err := h.github.GetBranchHead(ctx, token, repo.Owner, repo.Name, repo.Branch)
	if err != nil {
		return h.failSync(ctx, repo, err)
	}

	now := time.Now()
	if err := h.db.UpdateRepositorySyncStatus(repo.ID, db.SyncStatusSuccess, &now, nil); err != nil {
		return fmt.Errorf("record sync success: %w", err)
	}

	h.logger.InfoContext(ctx, "repository synced", "repo_id", repo.ID, "owner", repo.Owner, "name", repo.Name, "head", sha)
	return nil
}

// lookupToken resolves the stored provider token for the linked GitHub
// account the repository was imported through
func (h *RepoSyncHandler) lookupToken(repo *db.ImportedRepository) (string, error) {
	account, err := h.db.GetLinkedAccountForUser(repo.UserID, db.ProviderGitHub, repo.AccountUID)
	if err != nil {
		return "", fmt.Errorf("load linked account: %w", err)
	}
	if account == nil {
		return "", fmt.Errorf("github account %s is no longer linked", repo.AccountUID)
	}

	token, err := h.db.GetProviderToken(account.ID)
	if err != nil {
		return "", fmt.Errorf("load provider token: %w", err)
	}
	if token == nil {
		return "", fmt.Errorf("github access token not found; reconnect the account")
	}
	return token.AccessToken, nil
}

// failSync records the failed transition and surfaces the cause as the job error
func (h *RepoSyncHandler) failSync(ctx context.Context, repo *db.ImportedRepository, cause error) error {
	errorMsg := cause.Error()
	if err := h.db.UpdateRepositorySyncStatus(repo.ID, db.SyncStatusFailed, nil, &errorMsg); err != nil {
		h.logger.ErrorContext(ctx, "failed to record sync failure", "repo_id", repo.ID, "error", err)
	}
	return cause
}
