package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/codelens/internal/db"
	"github.com/codelens/internal/domain"
	"github.com/codelens/internal/httputil"
)

// PaginatedResponse is the envelope for paginated listings
type PaginatedResponse struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// createSubmission stores a new code submission and enqueues its review
func (s *Server) createSubmission(c *gin.Context) {
	var req domain.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	submission, err := s.submissionService.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// listSubmissions returns the user's submissions with filtering and pagination
func (s *Server) listSubmissions(c *gin.Context) {
	page := httputil.ParsePage(c)
	pageSize := httputil.ParsePageSize(c)

	filter := db.SubmissionFilter{
		Language: c.Query("language"),
		Ordering: httputil.ParseOrdering(c),
		Page:     page,
		PageSize: pageSize,
	}

	submissions, total, err := s.submissionService.List(c.Request.Context(), currentUserID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Count:    total,
		Next:     httputil.PageURL(c, page+1, pageSize, total),
		Previous: httputil.PageURL(c, page-1, pageSize, total),
		Results:  submissions,
	})
}

// getSubmission returns a single submission owned by the user
func (s *Server) getSubmission(c *gin.Context) {
	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid submission ID"})
		return
	}

	submission, err := s.submissionService.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// updateSubmission applies a partial update to a submission
func (s *Server) updateSubmission(c *gin.Context) {
	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid submission ID"})
		return
	}

	var req domain.UpdateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	submission, err := s.submissionService.Update(c.Request.Context(), currentUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// deleteSubmission removes a submission and its review
func (s *Server) deleteSubmission(c *gin.Context) {
	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid submission ID"})
		return
	}

	if err := s.submissionService.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// getSubmissionReview returns the review and its issues for a submission
func (s *Server) getSubmissionReview(c *gin.Context) {
	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid submission ID"})
		return
	}

	review, issues, err := s.submissionService.GetReview(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"review": review,
		"issues": issues,
	})
}
