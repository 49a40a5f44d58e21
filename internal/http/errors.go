package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/codelens/internal/domain"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respondError maps a service error onto an HTTP status and body. Unmapped
// errors are logged and reported as a generic 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		slog.ErrorContext(c.Request.Context(), "unhandled error", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	body := ErrorResponse{Error: domainErr.Message}
	if domainErr.Cause != nil {
		body.Details = domainErr.Cause.Error()
	}

	switch domainErr.Code {
	case domain.ErrValidationFailed.Code, domain.ErrUnknownProvider.Code:
		c.JSON(http.StatusBadRequest, body)
	case domain.ErrInvalidCredentials.Code, domain.ErrSessionExpired.Code, domain.ErrInvalidToken.Code:
		c.JSON(http.StatusUnauthorized, body)
	case domain.ErrUserNotFound.Code, domain.ErrAccountNotFound.Code,
		domain.ErrRepositoryNotFound.Code, domain.ErrSubmissionNotFound.Code,
		domain.ErrReviewNotFound.Code:
		c.JSON(http.StatusNotFound, body)
	case domain.ErrEmailTaken.Code, domain.ErrAccountTaken.Code, domain.ErrAlreadyImported.Code:
		c.JSON(http.StatusConflict, body)
	case domain.ErrUpstream.Code:
		c.JSON(http.StatusBadGateway, body)
	default:
		slog.ErrorContext(c.Request.Context(), "domain error", "code", domainErr.Code, "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: domainErr.Message})
	}
}
