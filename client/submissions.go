package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Submission is a code submission and its identifiers
type Submission struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Review is the AI-generated feedback for a submission
type Review struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	Status       string    `json:"status"`
	Score        int       `json:"score"`
	Summary      string    `json:"summary"`
	ErrorMessage *string   `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReviewIssue is a single finding within a review
type ReviewIssue struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Category string `json:"category"`
	Line     *int   `json:"line"`
	Message  string `json:"message"`
}

// SubmissionPage is one page of a submission listing
type SubmissionPage struct {
	Count    int          `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []Submission `json:"results"`
}

// SubmissionFilter narrows and orders a submission listing
type SubmissionFilter struct {
	Language string
	Ordering string
	Page     int
	PageSize int
}

// CreateSubmission submits code for review; analysis runs asynchronously and
// the review starts in pending status
func (c *Client) CreateSubmission(ctx context.Context, language, code string) (*Submission, error) {
	var submission Submission
	body := map[string]string{"language": language, "code": code}
	if err := c.do(ctx, http.MethodPost, "/api/submissions/", body, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListSubmissions returns one page of the user's submissions
func (c *Client) ListSubmissions(ctx context.Context, filter SubmissionFilter) (*SubmissionPage, error) {
	query := url.Values{}
	if filter.Language != "" {
		query.Set("language", filter.Language)
	}
	if filter.Ordering != "" {
		query.Set("ordering", filter.Ordering)
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(filter.PageSize))
	}

	path := "/api/submissions/"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page SubmissionPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetSubmissionReview returns the review and its issues for a submission
func (c *Client) GetSubmissionReview(ctx context.Context, submissionID string) (*Review, []ReviewIssue, error) {
	var result struct {
		Review *Review       `json:"review"`
		Issues []ReviewIssue `json:"issues"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/submissions/"+submissionID+"/review/", nil, &result); err != nil {
		return nil, nil, err
	}
	return result.Review, result.Issues, nil
}

// DeleteSubmission removes a submission and its review
func (c *Client) DeleteSubmission(ctx context.Context, submissionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/submissions/"+submissionID, nil, nil)
}
