package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codelens/internal/db"
	"github.com/codelens/internal/domain"
	"github.com/codelens/internal/github"
	"github.com/codelens/internal/jobs"
)

// newFakeGitHub serves the subset of the GitHub REST API the repo service
// touches, under the enterprise-style /api/v3/ prefix
func newFakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v3/user/repos":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]map[string]any{
				{
					"id":             42,
					"name":           "hello-world",
					"full_name":      "octocat/hello-world",
					"owner":          map[string]any{"login": "octocat"},
					"private":        false,
					"default_branch": "main",
				},
			})
		case r.URL.Path == "/api/v3/repos/octocat/hello-world":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"id":             42,
				"name":           "hello-world",
				"full_name":      "octocat/hello-world",
				"owner":          map[string]any{"login": "octocat"},
				"private":        true,
				"default_branch": "main",
			})
		case strings.HasPrefix(r.URL.Path, "/api/v3/repos/octocat/hello-world/commits/heads/main"):
			w.Header().Set("Content-Type", "application/vnd.github.sha")
			w.Write([]byte("abc123def456"))
		case r.URL.Path == "/api/v3/repos/octocat/hello-world/contents/":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]map[string]any{
				{"name": "main.go", "path": "main.go", "type": "file", "size": 13, "sha": "f1"},
				{"name": "src", "path": "src", "type": "dir", "size": 0, "sha": "d1"},
				{"name": "README.md", "path": "README.md", "type": "file", "size": 9, "sha": "f2"},
			})
		case r.URL.Path == "/api/v3/repos/octocat/hello-world/contents/main.go":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"name":     "main.go",
				"path":     "main.go",
				"type":     "file",
				"size":     13,
				"sha":      "f1",
				"encoding": "base64",
				"content":  "cGFja2FnZSBtYWluCg==",
			})
		case r.URL.Path == "/api/v3/repos/octocat/hello-world/contents/src":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]map[string]any{
				{"name": "app.go", "path": "src/app.go", "type": "file", "size": 20, "sha": "f3"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "Not Found"}`))
		}
	}))
}

// setupRepoService wires a repo service against a fake GitHub API with one
// user holding a linked github account and stored token
func setupRepoService(t *testing.T) (domain.RepoService, *db.DB, *db.User, func()) {
	t.Helper()

	database, dbCleanup := setupTestDB(t)
	server := newFakeGitHub(t)

	user := createTestUser(t, database, "a@x.com")
	account := db.NewLinkedAccount(user.ID, db.ProviderGitHub, "gh-1")
	account.Username = "octocat"
	if err := database.CreateLinkedAccount(account); err != nil {
		t.Fatalf("Failed to link account: %v", err)
	}
	if err := database.UpsertProviderToken(account.ID, "upstream-token"); err != nil {
		t.Fatalf("Failed to store provider token: %v", err)
	}

	service := NewRepoService(database, github.NewClientWithBaseURL(server.URL), slog.Default())
	cleanup := func() {
		server.Close()
		dbCleanup()
	}
	return service, database, user, cleanup
}

func TestRepoService_ListAvailable(t *testing.T) {
	service, _, user, cleanup := setupRepoService(t)
	defer cleanup()

	repos, err := service.ListAvailable(context.Background(), user.ID, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(repos) != 1 {
		t.Fatalf("Expected one repository, got %d", len(repos))
	}
	if repos[0].Owner != "octocat" || repos[0].Name != "hello-world" {
		t.Errorf("Unexpected repository: %+v", repos[0])
	}
}

func TestRepoService_ListContentsRoot(t *testing.T) {
	service, _, user, cleanup := setupRepoService(t)
	defer cleanup()

	entries, err := service.ListContents(context.Background(), user.ID, "", "octocat", "hello-world", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected three entries, got %d", len(entries))
	}
	if entries[0].Type != "dir" || entries[0].Name != "src" {
		t.Errorf("Expected directories listed first, got %+v", entries[0])
	}
	if entries[1].Name != "README.md" || entries[2].Name != "main.go" {
		t.Errorf("Expected files sorted by name, got %+v", entries[1:])
	}
}

func TestRepoService_GetFileContent(t *testing.T) {
	service, _, user, cleanup := setupRepoService(t)
	defer cleanup()

	content, err := service.GetFileContent(context.Background(), user.ID, "", "octocat", "hello-world", "main.go")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if content != "package main\n" {
		t.Errorf("Expected decoded file content, got %q", content)
	}
}

func TestRepoService_GetFileContentRejectsDirectory(t *testing.T) {
	service, _, user, cleanup := setupRepoService(t)
	defer cleanup()

	_, err := service.GetFileContent(context.Background(), user.ID, "", "octocat", "hello-world", "src")
	if !domain.IsUpstreamError(err) {
		t.Errorf("Expected upstream error for a directory path, got %v", err)
	}
}

func TestRepoService_ConnectionStatus(t *testing.T) {
	service, database, user, cleanup := setupRepoService(t)
	defer cleanup()

	ctx := context.Background()
	status, err := service.ConnectionStatus(ctx, user.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !status.Connected {
		t.Error("Expected connected with a linked account")
	}
	if len(status.Accounts) != 1 || status.Accounts[0].UID != "gh-1" {
		t.Errorf("Unexpected accounts: %+v", status.Accounts)
	}

	stranger := createTestUser(t, database, "stranger@x.com")
	status, err = service.ConnectionStatus(ctx, stranger.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if status.Connected || len(status.Accounts) != 0 {
		t.Errorf("Expected disconnected status, got %+v", status)
	}
}

func TestRepoService_ImportStartsPending(t *testing.T) {
	service, _, user, cleanup := setupRepoService(t)
	defer cleanup()

	ctx := context.Background()
	repo, err := service.Import(ctx, user.ID, domain.ImportRepositoryRequest{
		Owner: "octocat",
		Name:  "hello-world",
	})
	if err != nil {
		t.Fatalf("Expected import to succeed, got %v", err)
	}
	if repo.SyncStatus != db.SyncStatusPending {
		t.Errorf("Expected pending status, got %s", repo.SyncStatus)
	}
	if repo.Branch != "main" {
		t.Errorf("Expected default branch from upstream, got %s", repo.Branch)
	}
	if !repo.Private {
		t.Error("Expected private flag from upstream metadata")
	}
	if repo.AccountUID != "gh-1" {
		t.Errorf("Expected linked account uid recorded, got %s", repo.AccountUID)
	}
}

func TestRepoService_ImportDuplicate(t *testing.T) {
	service, _, user, cleanup := setupRepoService(t)
	defer cleanup()

	ctx := context.Background()
	req := domain.ImportRepositoryRequest{Owner: "octocat", Name: "hello-world"}
	if _, err := service.Import(ctx, user.ID, req); err != nil {
		t.Fatalf("Expected first import to succeed, got %v", err)
	}

	if _, err := service.Import(ctx, user.ID, req); !errors.Is(err, domain.ErrAlreadyImported) {
		t.Errorf("Expected ErrAlreadyImported, got %v", err)
	}
}

func TestRepoService_ImportUpstreamFailure(t *testing.T) {
	service, _, user, cleanup := setupRepoService(t)
	defer cleanup()

	_, err := service.Import(context.Background(), user.ID, domain.ImportRepositoryRequest{
		Owner: "octocat",
		Name:  "no-such-repo",
	})
	if !domain.IsUpstreamError(err) {
		t.Errorf("Expected upstream error for unknown repository, got %v", err)
	}
}

func TestRepoService_ImportWithoutLinkedAccount(t *testing.T) {
	service, database, _, cleanup := setupRepoService(t)
	defer cleanup()

	stranger := createTestUser(t, database, "stranger@x.com")
	_, err := service.Import(context.Background(), stranger.ID, domain.ImportRepositoryRequest{
		Owner: "octocat",
		Name:  "hello-world",
	})
	if !domain.IsNotFoundError(err) {
		t.Errorf("Expected account-not-found error, got %v", err)
	}
}

func TestRepoService_RequestSyncEnqueuesJob(t *testing.T) {
	service, database, user, cleanup := setupRepoService(t)
	defer cleanup()

	ctx := context.Background()
	repo, err := service.Import(ctx, user.ID, domain.ImportRepositoryRequest{
		Owner: "octocat",
		Name:  "hello-world",
	})
	if err != nil {
		t.Fatalf("Failed to import: %v", err)
	}

	synced, err := service.RequestSync(ctx, user.ID, repo.ID)
	if err != nil {
		t.Fatalf("Expected sync request to succeed, got %v", err)
	}
	if synced.SyncStatus != db.SyncStatusSyncing {
		t.Errorf("Expected syncing status, got %s", synced.SyncStatus)
	}

	job, err := database.ClaimPendingJob("test-worker")
	if err != nil {
		t.Fatalf("Failed to claim job: %v", err)
	}
	if job == nil {
		t.Fatal("Expected a pending job")
	}
	if job.Type != jobs.TypeRepoSync {
		t.Errorf("Expected repo_sync job, got %s", job.Type)
	}

	// A second request while syncing is not rejected
	if _, err := service.RequestSync(ctx, user.ID, repo.ID); err != nil {
		t.Errorf("Expected repeat sync request to succeed, got %v", err)
	}
}

func TestRepoService_RequestSyncEnqueueFailureLeavesStatus(t *testing.T) {
	service, database, user, cleanup := setupRepoService(t)
	defer cleanup()

	ctx := context.Background()
	repo, err := service.Import(ctx, user.ID, domain.ImportRepositoryRequest{
		Owner: "octocat",
		Name:  "hello-world",
	})
	if err != nil {
		t.Fatalf("Failed to import: %v", err)
	}

	// With the queue gone the enqueue fails; the repository must not be
	// left stranded in syncing
	if _, err := database.Exec("DROP TABLE jobs"); err != nil {
		t.Fatalf("Failed to drop jobs table: %v", err)
	}

	if _, err := service.RequestSync(ctx, user.ID, repo.ID); err == nil {
		t.Fatal("Expected sync request to fail without a job queue")
	}

	stored, err := database.GetImportedRepository(repo.ID)
	if err != nil {
		t.Fatalf("Failed to reload repository: %v", err)
	}
	if stored.SyncStatus != db.SyncStatusPending {
		t.Errorf("Expected repository to stay pending, got %s", stored.SyncStatus)
	}
}

func TestRepoService_OwnershipScoping(t *testing.T) {
	service, database, user, cleanup := setupRepoService(t)
	defer cleanup()

	ctx := context.Background()
	repo, err := service.Import(ctx, user.ID, domain.ImportRepositoryRequest{
		Owner: "octocat",
		Name:  "hello-world",
	})
	if err != nil {
		t.Fatalf("Failed to import: %v", err)
	}

	stranger := createTestUser(t, database, "stranger@x.com")
	if _, err := service.Get(ctx, stranger.ID, repo.ID); !errors.Is(err, domain.ErrRepositoryNotFound) {
		t.Errorf("Expected ErrRepositoryNotFound for another user, got %v", err)
	}
	if err := service.Delete(ctx, stranger.ID, repo.ID); !errors.Is(err, domain.ErrRepositoryNotFound) {
		t.Errorf("Expected delete to be ownership-scoped, got %v", err)
	}
}

func TestRepoService_Delete(t *testing.T) {
	service, _, user, cleanup := setupRepoService(t)
	defer cleanup()

	ctx := context.Background()
	repo, err := service.Import(ctx, user.ID, domain.ImportRepositoryRequest{
		Owner: "octocat",
		Name:  "hello-world",
	})
	if err != nil {
		t.Fatalf("Failed to import: %v", err)
	}

	if err := service.Delete(ctx, user.ID, repo.ID); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}
	if _, err := service.Get(ctx, user.ID, repo.ID); !errors.Is(err, domain.ErrRepositoryNotFound) {
		t.Errorf("Expected ErrRepositoryNotFound after delete, got %v", err)
	}
}
