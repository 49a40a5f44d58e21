package service

import (
	"context"
	"log/slog"

	"github.com/codelens/internal/db"
	"github.com/codelens/internal/domain"
	"github.com/codelens/internal/github"
	"github.com/codelens/internal/jobs"
	"github.com/codelens/internal/validation"
)

// repoService implements the RepoService interface
type repoService struct {
	database *db.DB
	github   *github.Client
	logger   *slog.Logger
}

// NewRepoService creates a new repository import/sync service
func NewRepoService(database *db.DB, githubClient *github.Client, logger *slog.Logger) domain.RepoService {
	return &repoService{
		database: database,
		github:   githubClient,
		logger:   logger,
	}
}

// githubToken resolves the stored provider token for one of the user's
// linked GitHub accounts. Empty accountUID selects the first linked account.
func (s *repoService) githubToken(userID, accountUID string) (string, string, error) {
	var account *db.LinkedAccount
	var err error

	if accountUID != "" {
		account, err = s.database.GetLinkedAccountForUser(userID, db.ProviderGitHub, accountUID)
	} else {
		accounts, listErr := s.database.ListLinkedAccountsByUser(userID)
		err = listErr
		for _, candidate := range accounts {
			if candidate.Provider == db.ProviderGitHub {
				account = candidate
				break
			}
		}
	}
	if err != nil {
		return "", "", domain.WrapDatabaseOperation("get linked account", err)
	}
	if account == nil {
		return "", "", domain.NewDomainError(domain.ErrAccountNotFound.Code,
			"GitHub account not connected; connect your GitHub account first", nil)
	}

	token, err := s.database.GetProviderToken(account.ID)
	if err != nil {
		return "", "", domain.WrapDatabaseOperation("get provider token", err)
	}
	if token == nil {
		return "", "", domain.NewDomainError(domain.ErrAccountNotFound.Code,
			"GitHub access token not found; disconnect and reconnect this GitHub account", nil)
	}
	return token.AccessToken, account.UID, nil
}

// ListAvailable lists the user's live GitHub repositories
func (s *repoService) ListAvailable(ctx context.Context, userID, accountUID string) ([]github.Repository, error) {
	token, _, err := s.githubToken(userID, accountUID)
	if err != nil {
		return nil, err
	}

	repos, err := s.github.ListRepositories(ctx, token)
	if err != nil {
		return nil, domain.WrapUpstream("github", err)
	}
	return repos, nil
}

// ListContents lists the entries at a path of a live GitHub repository
func (s *repoService) ListContents(ctx context.Context, userID, accountUID, owner, name, path string) ([]github.ContentEntry, error) {
	if err := validation.ValidateRepositoryRef(owner, name); err != nil {
		return nil, domain.WrapValidationFailed(err.Error(), nil)
	}

	token, _, err := s.githubToken(userID, accountUID)
	if err != nil {
		return nil, err
	}

	entries, err := s.github.ListContents(ctx, token, owner, name, path)
	if err != nil {
		return nil, domain.WrapUpstream("github", err)
	}
	return entries, nil
}

// GetFileContent fetches a single decoded file from a live GitHub repository
func (s *repoService) GetFileContent(ctx context.Context, userID, accountUID, owner, name, path string) (string, error) {
	if err := validation.ValidateRepositoryRef(owner, name); err != nil {
		return "", domain.WrapValidationFailed(err.Error(), nil)
	}

	token, _, err := s.githubToken(userID, accountUID)
	if err != nil {
		return "", err
	}

	content, err := s.github.GetFileContent(ctx, token, owner, name, path)
	if err != nil {
		return "", domain.WrapUpstream("github", err)
	}
	return content, nil
}

// ConnectionStatus reports whether the user has linked GitHub accounts
func (s *repoService) ConnectionStatus(ctx context.Context, userID string) (*domain.GitHubConnectionStatus, error) {
	accounts, err := s.database.ListLinkedAccountsByUser(userID)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("list linked accounts", err)
	}

	status := &domain.GitHubConnectionStatus{Accounts: []*db.LinkedAccount{}}
	for _, account := range accounts {
		if account.Provider == db.ProviderGitHub {
			status.Accounts = append(status.Accounts, account)
		}
	}
	status.Connected = len(status.Accounts) > 0
	return status, nil
}

// Import creates an imported repository record in the pending state after
// verifying the repository is reachable upstream
func (s *repoService) Import(ctx context.Context, userID string, req domain.ImportRepositoryRequest) (*db.ImportedRepository, error) {
	if err := validation.ValidateRepositoryRef(req.Owner, req.Name); err != nil {
		return nil, domain.WrapValidationFailed(err.Error(), nil)
	}

	token, accountUID, err := s.githubToken(userID, req.AccountUID)
	if err != nil {
		return nil, err
	}

	upstream, err := s.github.GetRepository(ctx, token, req.Owner, req.Name)
	if err != nil {
		return nil, domain.WrapUpstream("github", err)
	}

	branch := req.Branch
	if branch == "" {
		branch = upstream.DefaultBranch
	}

	repo := db.NewImportedRepository(userID, accountUID, req.Owner, req.Name, branch, upstream.Private)
	if err := s.database.CreateImportedRepository(repo); err != nil {
		if db.IsUniqueConstraintError(err) {
			return nil, domain.ErrAlreadyImported
		}
		return nil, domain.WrapDatabaseOperation("create imported repository", err)
	}

	s.logger.InfoContext(ctx, "repository imported", "repo_id", repo.ID, "owner", repo.Owner, "name", repo.Name)
	return repo, nil
}

// List returns the user's imported repositories
func (s *repoService) List(ctx context.Context, userID string) ([]*db.ImportedRepository, error) {
	repos, err := s.database.ListImportedRepositories(userID)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("list imported repositories", err)
	}
	return repos, nil
}

// Get returns a single imported repository owned by the user
func (s *repoService) Get(ctx context.Context, userID, repoID string) (*db.ImportedRepository, error) {
	repo, err := s.database.GetImportedRepository(repoID)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get imported repository", err)
	}
	if repo == nil || repo.UserID != userID {
		return nil, domain.ErrRepositoryNotFound
	}
	return repo, nil
}

// RequestSync transitions the repository to syncing and enqueues the sync
// job. A request while the repository is already syncing is not rejected:
// the external sync is idempotent and the last response wins.
func (s *repoService) RequestSync(ctx context.Context, userID, repoID string) (*db.ImportedRepository, error) {
	repo, err := s.Get(ctx, userID, repoID)
	if err != nil {
		return nil, err
	}

	// Enqueue before flipping the status: a repository must never sit in
	// syncing without a job that will move it to a terminal state
	payload, err := jobs.MarshalPayload(jobs.RepoSyncPayload{RepoID: repo.ID})
	if err != nil {
		return nil, domain.NewDomainError("JOB_ENQUEUE_FAILED", "failed to encode sync job", err)
	}
	if err := s.database.CreateJob(db.NewJob(jobs.TypeRepoSync, payload)); err != nil {
		return nil, domain.WrapDatabaseOperation("enqueue sync job", err)
	}

	if err := s.database.UpdateRepositorySyncStatus(repo.ID, db.SyncStatusSyncing, nil, nil); err != nil {
		return nil, domain.WrapDatabaseOperation("update sync status", err)
	}
	repo.SyncStatus = db.SyncStatusSyncing
	repo.LastSyncError = nil

	s.logger.InfoContext(ctx, "sync requested", "repo_id", repo.ID)
	return repo, nil
}

// Delete hard-deletes an imported repository. User confirmation happens in
// the UI before this is invoked.
func (s *repoService) Delete(ctx context.Context, userID, repoID string) error {
	repo, err := s.Get(ctx, userID, repoID)
	if err != nil {
		return err
	}

	if err := s.database.DeleteImportedRepository(repo.ID); err != nil {
		return domain.WrapDatabaseOperation("delete imported repository", err)
	}

	s.logger.InfoContext(ctx, "repository deleted", "repo_id", repo.ID)
	return nil
}
