package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codelens/internal/db"
)

// gracefulShutdownTimeout bounds the wait for the in-flight job on shutdown
const gracefulShutdownTimeout = 30 * time.Second

// Worker polls for pending jobs and processes them
type Worker struct {
	processor      *Processor
	db             *db.DB
	pollInterval   time.Duration
	staleThreshold time.Duration
	logger         *slog.Logger
	workerID       string // Unique ID for this worker instance

	// State management for graceful shutdown
	currentJobID string
	mu           sync.RWMutex
}

// NewWorker creates a new job worker
func NewWorker(processor *Processor, database *db.DB, pollInterval, staleThreshold time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		processor:      processor,
		db:             database,
		pollInterval:   pollInterval,
		staleThreshold: staleThreshold,
		logger:         logger,
		workerID:       uuid.New().String(),
	}
}

// Start begins the worker's main loop
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("job worker starting", "poll_interval", w.pollInterval)

	// On startup, recover from stale jobs (from previous crashes)
	if err := w.recoverStaleJobs(); err != nil {
		w.logger.Error("failed to recover stale jobs", "error", err)
		// Don't fail startup, just log the error
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("job worker shutting down gracefully")
			return w.gracefulShutdown()
		case <-ticker.C:
			w.processPendingJobs(ctx)
		}
	}
}

// recoverStaleJobs marks stale "running" jobs as failed on startup
func (w *Worker) recoverStaleJobs() error {
	w.logger.Info("checking for stale jobs", "threshold", w.staleThreshold)
	return w.db.MarkStaleJobsAsFailed(w.staleThreshold)
}

// gracefulShutdown waits for the current job to finish or times out
func (w *Worker) gracefulShutdown() error {
	w.mu.RLock()
	currentJobID := w.currentJobID
	w.mu.RUnlock()

	if currentJobID == "" {
		w.logger.Info("no job running, shutdown complete")
		return nil
	}

	w.logger.Info("waiting for current job to complete", "job_id", currentJobID, "timeout", gracefulShutdownTimeout)

	deadline := time.Now().Add(gracefulShutdownTimeout)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		w.mu.RLock()
		stillRunning := w.currentJobID == currentJobID
		w.mu.RUnlock()

		if !stillRunning {
			w.logger.Info("current job completed before shutdown")
			return nil
		}

		<-ticker.C
	}

	// Timeout reached, mark job as failed
	w.logger.Warn("shutdown timeout reached, marking current job as failed", "job_id", currentJobID)
	errorMsg := "worker shutdown before job completion"
	return w.db.UpdateJobCompleted(currentJobID, db.JobStatusFailed, &errorMsg)
}

// processPendingJobs processes a single pending job if worker is idle
// Uses atomic claiming to prevent race conditions
func (w *Worker) processPendingJobs(ctx context.Context) {
	w.mu.RLock()
	busy := w.currentJobID != ""
	w.mu.RUnlock()

	if busy {
		return // Already processing a job
	}

	// Atomically claim a pending job
	job, err := w.db.ClaimPendingJob(w.workerID)
	if err != nil {
		w.logger.Error("failed to claim pending job", "error", err)
		return
	}

	if job == nil {
		return // No job available
	}

	w.mu.Lock()
	w.currentJobID = job.ID
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.currentJobID = ""
		w.mu.Unlock()
	}()

	w.logger.Info("starting job processing", "job_id", job.ID, "type", job.Type, "worker_id", w.workerID)
	startTime := time.Now()

	if err := w.processor.ProcessJob(ctx, job); err != nil {
		w.logger.Error("job processing failed", "job_id", job.ID, "error", err, "duration", time.Since(startTime))
		return
	}

	w.logger.Info("job processing completed", "job_id", job.ID, "duration", time.Since(startTime))
}
