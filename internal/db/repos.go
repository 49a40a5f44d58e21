package db

import (
	"database/sql"
	"errors"
	"time"
)

const repoColumns = "id, user_id, account_uid, owner, name, branch, private, sync_status, last_synced_at, last_sync_error, created_at, updated_at"

// CreateImportedRepository inserts a new imported repository record
func (db *DB) CreateImportedRepository(repo *ImportedRepository) error {
	_, err := db.Exec(
		"INSERT INTO imported_repositories (id, user_id, account_uid, owner, name, branch, private, sync_status, last_synced_at, last_sync_error, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		repo.ID, repo.UserID, repo.AccountUID, repo.Owner, repo.Name, repo.Branch, repo.Private,
		repo.SyncStatus, repo.LastSyncedAt, repo.LastSyncError, repo.CreatedAt, repo.UpdatedAt,
	)
	return err
}

// GetImportedRepository retrieves an imported repository by ID, or nil
func (db *DB) GetImportedRepository(id string) (*ImportedRepository, error) {
	return db.scanRepo(db.QueryRow(
		"SELECT "+repoColumns+" FROM imported_repositories WHERE id = ?", id))
}

// ListImportedRepositories retrieves all imported repositories for a user,
// newest first
func (db *DB) ListImportedRepositories(userID string) ([]*ImportedRepository, error) {
	rows, err := db.Query(
		"SELECT "+repoColumns+" FROM imported_repositories WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []*ImportedRepository
	for rows.Next() {
		repo := &ImportedRepository{}
		if err := rows.Scan(&repo.ID, &repo.UserID, &repo.AccountUID, &repo.Owner, &repo.Name, &repo.Branch,
			&repo.Private, &repo.SyncStatus, &repo.LastSyncedAt, &repo.LastSyncError, &repo.CreatedAt, &repo.UpdatedAt); err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, rows.Err()
}

func (db *DB) scanRepo(row *sql.Row) (*ImportedRepository, error) {
	repo := &ImportedRepository{}
	err := row.Scan(&repo.ID, &repo.UserID, &repo.AccountUID, &repo.Owner, &repo.Name, &repo.Branch,
		&repo.Private, &repo.SyncStatus, &repo.LastSyncedAt, &repo.LastSyncError, &repo.CreatedAt, &repo.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// UpdateRepositorySyncStatus records a sync status transition. Success clears
// the last error and stamps last_synced_at; failure records the error.
func (db *DB) UpdateRepositorySyncStatus(id, status string, syncedAt *time.Time, syncError *string) error {
	_, err := db.Exec(
		"UPDATE imported_repositories SET sync_status = ?, last_synced_at = COALESCE(?, last_synced_at), last_sync_error = ?, updated_at = ? WHERE id = ?",
		status, syncedAt, syncError, time.Now(), id,
	)
	return err
}

// DeleteImportedRepository removes an imported repository record
func (db *DB) DeleteImportedRepository(id string) error {
	_, err := db.Exec("DELETE FROM imported_repositories WHERE id = ?", id)
	return err
}

// MarkStaleSyncingRepositories transitions repositories stuck in the syncing
// state past the threshold to failed. Covers worker crashes mid-sync.
func (db *DB) MarkStaleSyncingRepositories(threshold time.Duration) (int64, error) {
	cutoff := time.Now().Add(-threshold)
	result, err := db.Exec(
		"UPDATE imported_repositories SET sync_status = ?, last_sync_error = ?, updated_at = ? WHERE sync_status = ? AND updated_at < ?",
		SyncStatusFailed, "sync timed out", time.Now(), SyncStatusSyncing, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
