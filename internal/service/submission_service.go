package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/codelens/internal/db"
	"github.com/codelens/internal/domain"
	"github.com/codelens/internal/jobs"
	"github.com/codelens/internal/validation"
)

// submissionService implements the SubmissionService interface
type submissionService struct {
	database *db.DB
	logger   *slog.Logger
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(database *db.DB, logger *slog.Logger) domain.SubmissionService {
	return &submissionService{
		database: database,
		logger:   logger,
	}
}

// Create stores a new submission and enqueues its review analysis
func (s *submissionService) Create(ctx context.Context, userID string, req domain.CreateSubmissionRequest) (*db.Submission, error) {
	language := strings.ToLower(req.Language)
	if err := validation.ValidateLanguage(language); err != nil {
		return nil, domain.WrapValidationFailed(err.Error(), nil)
	}
	if err := validation.ValidateCode(req.Code); err != nil {
		return nil, domain.WrapValidationFailed(err.Error(), nil)
	}

	submission := db.NewSubmission(userID, language, req.Code)
	if err := s.database.CreateSubmission(submission); err != nil {
		return nil, domain.WrapDatabaseOperation("create submission", err)
	}

	review := db.NewReview(submission.ID)
	if err := s.database.CreateReview(review); err != nil {
		return nil, domain.WrapDatabaseOperation("create review", err)
	}

	if err := s.enqueueAnalysis(submission.ID); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "submission created", "submission_id", submission.ID, "language", language)
	return submission, nil
}

// enqueueAnalysis queues an asynchronous review analysis for a submission
func (s *submissionService) enqueueAnalysis(submissionID string) error {
	payload, err := jobs.MarshalPayload(jobs.ReviewAnalyzePayload{SubmissionID: submissionID})
	if err != nil {
		return domain.NewDomainError("JOB_ENQUEUE_FAILED", "failed to encode analysis job", err)
	}
	if err := s.database.CreateJob(db.NewJob(jobs.TypeReviewAnalyze, payload)); err != nil {
		return domain.WrapDatabaseOperation("enqueue analysis job", err)
	}
	return nil
}

// List returns a page of the user's submissions and the total matching count
func (s *submissionService) List(ctx context.Context, userID string, filter db.SubmissionFilter) ([]*db.Submission, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	submissions, total, err := s.database.ListSubmissions(userID, filter)
	if err != nil {
		return nil, 0, domain.WrapDatabaseOperation("list submissions", err)
	}
	return submissions, total, nil
}

// Get returns a single submission owned by the user
func (s *submissionService) Get(ctx context.Context, userID, submissionID string) (*db.Submission, error) {
	submission, err := s.database.GetSubmission(submissionID)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get submission", err)
	}
	if submission == nil || submission.UserID != userID {
		return nil, domain.ErrSubmissionNotFound
	}
	return submission, nil
}

// Update applies a partial update to a submission owned by the user
func (s *submissionService) Update(ctx context.Context, userID, submissionID string, req domain.UpdateSubmissionRequest) (*db.Submission, error) {
	submission, err := s.Get(ctx, userID, submissionID)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.Language != nil {
		language := strings.ToLower(*req.Language)
		if err := validation.ValidateLanguage(language); err != nil {
			return nil, domain.WrapValidationFailed(err.Error(), nil)
		}
		changed = changed || submission.Language != language
		submission.Language = language
	}
	if req.Code != nil {
		if err := validation.ValidateCode(*req.Code); err != nil {
			return nil, domain.WrapValidationFailed(err.Error(), nil)
		}
		changed = changed || submission.Code != *req.Code
		submission.Code = *req.Code
	}

	if err := s.database.UpdateSubmission(submission); err != nil {
		return nil, domain.WrapDatabaseOperation("update submission", err)
	}

	// Changed code invalidates the existing verdict: reset the review to
	// pending and analyze again
	if changed {
		if err := s.resetReview(submission.ID); err != nil {
			return nil, err
		}
		if err := s.enqueueAnalysis(submission.ID); err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "submission changed, re-analysis queued", "submission_id", submission.ID)
	}
	return submission, nil
}

// resetReview returns a submission's review to the pending state and drops
// its previous findings
func (s *submissionService) resetReview(submissionID string) error {
	review, err := s.database.GetReviewBySubmission(submissionID)
	if err != nil {
		return domain.WrapDatabaseOperation("get review", err)
	}
	if review == nil {
		return s.database.CreateReview(db.NewReview(submissionID))
	}

	review.Status = db.ReviewStatusPending
	review.Score = 0
	review.Summary = ""
	review.ErrorMessage = nil
	if err := s.database.UpdateReview(review); err != nil {
		return domain.WrapDatabaseOperation("reset review", err)
	}
	if err := s.database.DeleteReviewIssues(review.ID); err != nil {
		return domain.WrapDatabaseOperation("clear review issues", err)
	}
	return nil
}

// Delete removes a submission owned by the user along with its review
func (s *submissionService) Delete(ctx context.Context, userID, submissionID string) error {
	submission, err := s.Get(ctx, userID, submissionID)
	if err != nil {
		return err
	}

	if err := s.database.DeleteSubmission(submission.ID); err != nil {
		return domain.WrapDatabaseOperation("delete submission", err)
	}
	return nil
}

// GetReview returns the review and its issues for a submission owned by the user
func (s *submissionService) GetReview(ctx context.Context, userID, submissionID string) (*db.Review, []*db.ReviewIssue, error) {
	submission, err := s.Get(ctx, userID, submissionID)
	if err != nil {
		return nil, nil, err
	}

	review, err := s.database.GetReviewBySubmission(submission.ID)
	if err != nil {
		return nil, nil, domain.WrapDatabaseOperation("get review", err)
	}
	if review == nil {
		return nil, nil, domain.ErrReviewNotFound
	}

	issues, err := s.database.ListReviewIssues(review.ID)
	if err != nil {
		return nil, nil, domain.WrapDatabaseOperation("list review issues", err)
	}
	return review, issues, nil
}
