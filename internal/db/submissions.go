package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SubmissionFilter narrows and orders a submission listing
type SubmissionFilter struct {
	Language string // empty means all languages
	Ordering string // created_at, -created_at, language, -language
	Page     int    // 1-based
	PageSize int
}

// orderClause maps the API ordering parameter to a SQL ORDER BY clause.
// Unknown values fall back to newest-first.
func (f SubmissionFilter) orderClause() string {
	switch f.Ordering {
	case "created_at":
		return "created_at ASC"
	case "-created_at", "":
		return "created_at DESC"
	case "language":
		return "language ASC, created_at DESC"
	case "-language":
		return "language DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

// CreateSubmission inserts a new code submission
func (db *DB) CreateSubmission(submission *Submission) error {
	_, err := db.Exec(
		"INSERT INTO submissions (id, user_id, language, code, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		submission.ID, submission.UserID, submission.Language, submission.Code, submission.CreatedAt, submission.UpdatedAt,
	)
	return err
}

// GetSubmission retrieves a submission by ID, or nil
func (db *DB) GetSubmission(id string) (*Submission, error) {
	submission := &Submission{}
	err := db.QueryRow(
		"SELECT id, user_id, language, code, created_at, updated_at FROM submissions WHERE id = ?", id).
		Scan(&submission.ID, &submission.UserID, &submission.Language, &submission.Code, &submission.CreatedAt, &submission.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return submission, nil
}

// ListSubmissions retrieves a page of a user's submissions plus the total
// count matching the filter
func (db *DB) ListSubmissions(userID string, filter SubmissionFilter) ([]*Submission, int, error) {
	where := "WHERE user_id = ?"
	args := []interface{}{userID}
	if filter.Language != "" {
		where += " AND language = ?"
		args = append(args, filter.Language)
	}

	var total int
	if err := db.QueryRow("SELECT COUNT(*) FROM submissions "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := fmt.Sprintf("SELECT id, user_id, language, code, created_at, updated_at FROM submissions %s ORDER BY %s LIMIT ? OFFSET ?",
		where, filter.orderClause())
	rows, err := db.Query(query, append(args, filter.PageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var submissions []*Submission
	for rows.Next() {
		submission := &Submission{}
		if err := rows.Scan(&submission.ID, &submission.UserID, &submission.Language, &submission.Code,
			&submission.CreatedAt, &submission.UpdatedAt); err != nil {
			return nil, 0, err
		}
		submissions = append(submissions, submission)
	}
	return submissions, total, rows.Err()
}

// UpdateSubmission updates the language and code of a submission
func (db *DB) UpdateSubmission(submission *Submission) error {
	_, err := db.Exec(
		"UPDATE submissions SET language = ?, code = ?, updated_at = ? WHERE id = ?",
		submission.Language, submission.Code, time.Now(), submission.ID,
	)
	return err
}

// DeleteSubmission removes a submission; its review and issues are removed by
// the foreign key cascade
func (db *DB) DeleteSubmission(id string) error {
	_, err := db.Exec("DELETE FROM submissions WHERE id = ?", id)
	return err
}

// CreateReview inserts a review record for a submission
func (db *DB) CreateReview(review *Review) error {
	_, err := db.Exec(
		"INSERT INTO reviews (id, submission_id, status, score, summary, error_message, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		review.ID, review.SubmissionID, review.Status, review.Score, review.Summary, review.ErrorMessage, review.CreatedAt, review.UpdatedAt,
	)
	return err
}

// GetReviewBySubmission retrieves the review owned by a submission, or nil
func (db *DB) GetReviewBySubmission(submissionID string) (*Review, error) {
	review := &Review{}
	err := db.QueryRow(
		"SELECT id, submission_id, status, score, summary, error_message, created_at, updated_at FROM reviews WHERE submission_id = ?", submissionID).
		Scan(&review.ID, &review.SubmissionID, &review.Status, &review.Score, &review.Summary, &review.ErrorMessage, &review.CreatedAt, &review.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return review, nil
}

// UpdateReview records the outcome of a review analysis
func (db *DB) UpdateReview(review *Review) error {
	_, err := db.Exec(
		"UPDATE reviews SET status = ?, score = ?, summary = ?, error_message = ?, updated_at = ? WHERE id = ?",
		review.Status, review.Score, review.Summary, review.ErrorMessage, time.Now(), review.ID,
	)
	return err
}

// CreateReviewIssues inserts the findings of a completed review
func (db *DB) CreateReviewIssues(issues []*ReviewIssue) error {
	for _, issue := range issues {
		if _, err := db.Exec(
			"INSERT INTO review_issues (id, review_id, severity, category, line, message) VALUES (?, ?, ?, ?, ?, ?)",
			issue.ID, issue.ReviewID, issue.Severity, issue.Category, issue.Line, issue.Message,
		); err != nil {
			return err
		}
	}
	return nil
}

// DeleteReviewIssues removes all findings for a review. Called before a
// re-analysis records its results.
func (db *DB) DeleteReviewIssues(reviewID string) error {
	_, err := db.Exec("DELETE FROM review_issues WHERE review_id = ?", reviewID)
	return err
}

// ListReviewIssues retrieves all findings for a review
func (db *DB) ListReviewIssues(reviewID string) ([]*ReviewIssue, error) {
	rows, err := db.Query(
		"SELECT id, review_id, severity, category, line, message FROM review_issues WHERE review_id = ? ORDER BY rowid ASC", reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []*ReviewIssue
	for rows.Next() {
		issue := &ReviewIssue{}
		if err := rows.Scan(&issue.ID, &issue.ReviewID, &issue.Severity, &issue.Category, &issue.Line, &issue.Message); err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}
