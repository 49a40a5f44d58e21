package jobs

import (
	"context"
	"log/slog"

	"github.com/codelens/internal/db"
	"github.com/codelens/internal/github"
	"github.com/codelens/internal/llm"
)

// Processor handles the execution of background jobs
type Processor struct {
	registry *HandlerRegistry
	db       *db.DB
	logger   *slog.Logger
}

// NewProcessor creates a new job processor with registered handlers
func NewProcessor(database *db.DB, githubClient *github.Client, llmClient *llm.Client, logger *slog.Logger) *Processor {
	registry := NewHandlerRegistry()

	registry.Register(TypeRepoSync, NewRepoSyncHandler(database, githubClient, logger))
	registry.Register(TypeReviewAnalyze, NewReviewAnalyzeHandler(database, llmClient, logger))

	return &Processor{
		registry: registry,
		db:       database,
		logger:   logger,
	}
}

// ProcessJob processes a single job based on its type using the handler registry
// Note: Job should already be marked as "running" by ClaimPendingJob
func (p *Processor) ProcessJob(ctx context.Context, job *db.Job) error {
	p.logger.InfoContext(ctx, "processing job", "job_id", job.ID, "type", job.Type)

	handler, err := p.registry.GetHandler(job.Type)
	if err != nil {
		p.logger.ErrorContext(ctx, "unknown job type", "job_id", job.ID, "type", job.Type, "error", err)
		errorMsg := err.Error()
		return p.db.UpdateJobCompleted(job.ID, db.JobStatusFailed, &errorMsg)
	}

	err = handler.Handle(ctx, job)

	if err != nil {
		p.logger.ErrorContext(ctx, "job failed", "job_id", job.ID, "type", job.Type, "error", err)
		errorMsg := err.Error()
		return p.db.UpdateJobCompleted(job.ID, db.JobStatusFailed, &errorMsg)
	}

	p.logger.InfoContext(ctx, "job completed successfully", "job_id", job.ID, "type", job.Type)
	return p.db.UpdateJobCompleted(job.ID, db.JobStatusCompleted, nil)
}
