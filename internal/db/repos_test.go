package db

import (
	"os"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	tmpDB, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("Failed to create temp database: %v", err)
	}
	tmpDB.Close()

	database, err := Init(tmpDB.Name())
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	cleanup := func() {
		database.Close()
		os.Remove(tmpDB.Name())
	}
	return database, cleanup
}

func createRepoFixture(t *testing.T, database *DB) *ImportedRepository {
	t.Helper()

	user := NewUser("a@x.com", "")
	if err := database.CreateUser(user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	repo := NewImportedRepository(user.ID, "gh-1", "octocat", "hello-world", "main", false)
	if err := database.CreateImportedRepository(repo); err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	return repo
}

func TestSyncStatusTransitions(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	repo := createRepoFixture(t, database)
	if repo.SyncStatus != SyncStatusPending {
		t.Fatalf("Expected initial status pending, got %s", repo.SyncStatus)
	}

	// pending -> syncing
	if err := database.UpdateRepositorySyncStatus(repo.ID, SyncStatusSyncing, nil, nil); err != nil {
		t.Fatalf("Failed to mark syncing: %v", err)
	}
	loaded, err := database.GetImportedRepository(repo.ID)
	if err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}
	if loaded.SyncStatus != SyncStatusSyncing {
		t.Errorf("Expected syncing, got %s", loaded.SyncStatus)
	}
	if loaded.LastSyncedAt != nil || loaded.LastSyncError != nil {
		t.Error("Expected no sync timestamp or error while syncing")
	}

	// syncing -> success stamps last_synced_at and clears the error
	now := time.Now()
	if err := database.UpdateRepositorySyncStatus(repo.ID, SyncStatusSuccess, &now, nil); err != nil {
		t.Fatalf("Failed to mark success: %v", err)
	}
	loaded, _ = database.GetImportedRepository(repo.ID)
	if loaded.SyncStatus != SyncStatusSuccess {
		t.Errorf("Expected success, got %s", loaded.SyncStatus)
	}
	if loaded.LastSyncedAt == nil {
		t.Error("Expected last_synced_at to be set on success")
	}
	if loaded.LastSyncError != nil {
		t.Errorf("Expected no sync error on success, got %v", *loaded.LastSyncError)
	}

	// syncing -> failed records the error and keeps the previous success time
	syncErr := "github unreachable"
	if err := database.UpdateRepositorySyncStatus(repo.ID, SyncStatusFailed, nil, &syncErr); err != nil {
		t.Fatalf("Failed to mark failed: %v", err)
	}
	loaded, _ = database.GetImportedRepository(repo.ID)
	if loaded.SyncStatus != SyncStatusFailed {
		t.Errorf("Expected failed, got %s", loaded.SyncStatus)
	}
	if loaded.LastSyncError == nil || *loaded.LastSyncError != "github unreachable" {
		t.Errorf("Expected sync error recorded, got %v", loaded.LastSyncError)
	}
	if loaded.LastSyncedAt == nil {
		t.Error("Expected previous last_synced_at to survive a failure")
	}
}

func TestMarkStaleSyncingRepositories(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	repo := createRepoFixture(t, database)
	if err := database.UpdateRepositorySyncStatus(repo.ID, SyncStatusSyncing, nil, nil); err != nil {
		t.Fatalf("Failed to mark syncing: %v", err)
	}

	// A fresh syncing repository is left alone
	count, err := database.MarkStaleSyncingRepositories(time.Hour)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no stale repositories, got %d", count)
	}

	// Backdate the sync start past the threshold
	stale := time.Now().Add(-2 * time.Hour)
	if _, err := database.Exec("UPDATE imported_repositories SET updated_at = ? WHERE id = ?", stale, repo.ID); err != nil {
		t.Fatalf("Failed to backdate repository: %v", err)
	}

	count, err = database.MarkStaleSyncingRepositories(time.Hour)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected one stale repository, got %d", count)
	}

	loaded, _ := database.GetImportedRepository(repo.ID)
	if loaded.SyncStatus != SyncStatusFailed {
		t.Errorf("Expected stale repository marked failed, got %s", loaded.SyncStatus)
	}
	if loaded.LastSyncError == nil || *loaded.LastSyncError != "sync timed out" {
		t.Errorf("Expected timeout error recorded, got %v", loaded.LastSyncError)
	}
}

func TestUniqueImportConstraint(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	repo := createRepoFixture(t, database)

	duplicate := NewImportedRepository(repo.UserID, repo.AccountUID, repo.Owner, repo.Name, "main", false)
	err := database.CreateImportedRepository(duplicate)
	if err == nil {
		t.Fatal("Expected unique constraint violation")
	}
	if !IsUniqueConstraintError(err) {
		t.Errorf("Expected unique constraint error, got %v", err)
	}
}
