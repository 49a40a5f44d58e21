package db

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, type, payload, status, claimed_by, error_message, created_at, started_at, completed_at"

// CreateJob enqueues a new pending job
func (db *DB) CreateJob(job *Job) error {
	_, err := db.Exec(
		"INSERT INTO jobs (id, type, payload, status, claimed_by, error_message, created_at, started_at, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		job.ID, job.Type, job.Payload, job.Status, job.ClaimedBy, job.ErrorMessage, job.CreatedAt, job.StartedAt, job.CompletedAt,
	)
	return err
}

// GetJob retrieves a job by ID, or nil
func (db *DB) GetJob(id string) (*Job, error) {
	return db.scanJob(db.QueryRow("SELECT "+jobColumns+" FROM jobs WHERE id = ?", id))
}

func (db *DB) scanJob(row *sql.Row) (*Job, error) {
	job := &Job{}
	err := row.Scan(&job.ID, &job.Type, &job.Payload, &job.Status, &job.ClaimedBy,
		&job.ErrorMessage, &job.CreatedAt, &job.StartedAt, &job.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ClaimPendingJob atomically claims the oldest pending job for a worker.
// Returns nil if no pending job exists.
func (db *DB) ClaimPendingJob(workerID string) (*Job, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var jobID string
	err = tx.QueryRow("SELECT id FROM jobs WHERE status = ? ORDER BY created_at ASC LIMIT 1", JobStatusPending).Scan(&jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	result, err := tx.Exec(
		"UPDATE jobs SET status = ?, claimed_by = ?, started_at = ? WHERE id = ? AND status = ?",
		JobStatusRunning, workerID, time.Now(), jobID, JobStatusPending,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Another worker claimed the job between select and update
		return nil, tx.Commit()
	}

	job := &Job{}
	err = tx.QueryRow("SELECT "+jobColumns+" FROM jobs WHERE id = ?", jobID).
		Scan(&job.ID, &job.Type, &job.Payload, &job.Status, &job.ClaimedBy,
			&job.ErrorMessage, &job.CreatedAt, &job.StartedAt, &job.CompletedAt)
	if err != nil {
		return nil, err
	}
	return job, tx.Commit()
}

// UpdateJobCompleted marks a job as completed or failed
func (db *DB) UpdateJobCompleted(jobID, status string, errorMessage *string) error {
	_, err := db.Exec(
		"UPDATE jobs SET status = ?, error_message = ?, completed_at = ? WHERE id = ?",
		status, errorMessage, time.Now(), jobID,
	)
	return err
}

// ReleaseJobClaim returns a running job to the pending state
func (db *DB) ReleaseJobClaim(jobID string) error {
	_, err := db.Exec(
		"UPDATE jobs SET status = ?, claimed_by = NULL, started_at = NULL WHERE id = ? AND status = ?",
		JobStatusPending, jobID, JobStatusRunning,
	)
	return err
}

// MarkStaleJobsAsFailed fails running jobs whose claim is older than the
// threshold. Called on worker startup to recover from crashes.
func (db *DB) MarkStaleJobsAsFailed(threshold time.Duration) error {
	cutoff := time.Now().Add(-threshold)
	_, err := db.Exec(
		"UPDATE jobs SET status = ?, error_message = ?, completed_at = ? WHERE status = ? AND started_at < ?",
		JobStatusFailed, "job abandoned by previous worker", time.Now(), JobStatusRunning, cutoff,
	)
	return err
}
