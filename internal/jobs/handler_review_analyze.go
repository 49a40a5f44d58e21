package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/codelens/internal/db"
	"github.com/codelens/internal/llm"
)

// ReviewAnalyzeHandler runs the AI analysis for a code submission and
// persists the resulting review and its issues
type ReviewAnalyzeHandler struct {
	db     *db.DB
	llm    *llm.Client
	logger *slog.Logger
}

// NewReviewAnalyzeHandler creates a review analysis handler
func NewReviewAnalyzeHandler(database *db.DB, llmClient *llm.Client, logger *slog.Logger) *ReviewAnalyzeHandler {
	return &ReviewAnalyzeHandler{
		db:     database,
		llm:    llmClient,
		logger: logger,
	}
}

// Handle executes a review analysis job
func (h *ReviewAnalyzeHandler) Handle(ctx context.Context, job *db.Job) error {
	var payload ReviewAnalyzePayload
	if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
		return fmt.Errorf("invalid review payload: %w", err)
	}

	submission, err := h.db.GetSubmission(payload.SubmissionID)
	if err != nil {
		return fmt.Errorf("load submission: %w", err)
	}
	if submission == nil {
		h.logger.InfoContext(ctx, "submission gone, skipping analysis", "submission_id", payload.SubmissionID)
		return nil
	}

	review, err := h.db.GetReviewBySubmission(submission.ID)
	if err != nil {
		return fmt.Errorf("load review: %w", err)
	}
	if review == nil {
		review = db.NewReview(submission.ID)
		if err := h.db.CreateReview(review); err != nil {
			return fmt.Errorf("create review: %w", err)
		}
	}

	review.Status = db.ReviewStatusRunning
	if err := h.db.UpdateReview(review); err != nil {
		return fmt.Errorf("mark review running: %w", err)
	}

	result, err := h.llm.Analyze(ctx, submission.Language, submission.Code)
	if err != nil {
		errorMsg := err.Error()
		review.Status = db.ReviewStatusFailed
		review.ErrorMessage = &errorMsg
		if updateErr := h.db.UpdateReview(review); updateErr != nil {
			h.logger.ErrorContext(ctx, "failed to record review failure", "review_id", review.ID, "error", updateErr)
		}
		return err
	}

	review.Status = db.ReviewStatusCompleted
	review.Score = result.Score
	review.Summary = result.Summary
	review.ErrorMessage = nil
	if err := h.db.UpdateReview(review); err != nil {
		return fmt.Errorf("record review result: %w", err)
	}

	// A re-analysis replaces the previous findings
	if err := h.db.DeleteReviewIssues(review.ID); err != nil {
		return fmt.Errorf("clear previous issues: %w", err)
	}

	issues := make([]*db.ReviewIssue, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, &db.ReviewIssue{
			ID:       uuid.New().String(),
			ReviewID: review.ID,
			Severity: issue.Severity,
			Category: issue.Category,
			Line:     issue.Line,
			Message:  issue.Message,
		})
	}
	if err := h.db.CreateReviewIssues(issues); err != nil {
		return fmt.Errorf("record review issues: %w", err)
	}

	h.logger.InfoContext(ctx, "review completed", "submission_id", submission.ID, "score", result.Score, "issues", len(issues))
	return nil
}
