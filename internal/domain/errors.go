package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Domain Error Types
// ============================================================================

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ============================================================================
// Common Domain Errors
// ============================================================================

var (
	// Authentication Errors
	ErrInvalidCredentials = &DomainError{
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid email or password",
	}
	ErrSessionExpired = &DomainError{
		Code:    "SESSION_EXPIRED",
		Message: "session has expired",
	}
	ErrInvalidToken = &DomainError{
		Code:    "INVALID_TOKEN",
		Message: "token is invalid or expired",
	}

	// User Errors
	ErrUserNotFound = &DomainError{
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}
	ErrEmailTaken = &DomainError{
		Code:    "EMAIL_TAKEN",
		Message: "an account with this email already exists",
	}

	// Linked Account Errors
	ErrAccountNotFound = &DomainError{
		Code:    "ACCOUNT_NOT_FOUND",
		Message: "linked account not found",
	}
	ErrAccountTaken = &DomainError{
		Code:    "ACCOUNT_TAKEN",
		Message: "this account is already connected to another user",
	}
	ErrUnknownProvider = &DomainError{
		Code:    "UNKNOWN_PROVIDER",
		Message: "unknown identity provider",
	}

	// Repository Errors
	ErrRepositoryNotFound = &DomainError{
		Code:    "REPOSITORY_NOT_FOUND",
		Message: "imported repository not found",
	}
	ErrAlreadyImported = &DomainError{
		Code:    "ALREADY_IMPORTED",
		Message: "repository is already imported",
	}

	// Submission Errors
	ErrSubmissionNotFound = &DomainError{
		Code:    "SUBMISSION_NOT_FOUND",
		Message: "submission not found",
	}
	ErrReviewNotFound = &DomainError{
		Code:    "REVIEW_NOT_FOUND",
		Message: "review not found",
	}

	// Validation Errors
	ErrValidationFailed = &DomainError{
		Code:    "VALIDATION_FAILED",
		Message: "validation failed",
	}

	// Infrastructure Errors
	ErrUpstream = &DomainError{
		Code:    "UPSTREAM_ERROR",
		Message: "upstream service request failed",
	}
	ErrDatabaseOperation = &DomainError{
		Code:    "DATABASE_OPERATION_FAILED",
		Message: "database operation failed",
	}
)

// ============================================================================
// Error Wrapping Helpers
// ============================================================================

// WrapValidationFailed wraps an error as a validation failure with a field hint
func WrapValidationFailed(detail string, cause error) error {
	return &DomainError{
		Code:    ErrValidationFailed.Code,
		Message: detail,
		Cause:   cause,
	}
}

// WrapUpstream wraps an error as an upstream service failure
func WrapUpstream(service string, cause error) error {
	return &DomainError{
		Code:    ErrUpstream.Code,
		Message: fmt.Sprintf("%s request failed", service),
		Cause:   cause,
	}
}

// WrapDatabaseOperation wraps an error as a database operation failure
func WrapDatabaseOperation(operation string, cause error) error {
	return &DomainError{
		Code:    ErrDatabaseOperation.Code,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Cause:   cause,
	}
}

// ============================================================================
// Error Checking Helpers
// ============================================================================

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrUserNotFound.Code ||
			domainErr.Code == ErrAccountNotFound.Code ||
			domainErr.Code == ErrRepositoryNotFound.Code ||
			domainErr.Code == ErrSubmissionNotFound.Code ||
			domainErr.Code == ErrReviewNotFound.Code
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrValidationFailed.Code
	}
	return false
}

// IsConflictError checks if an error indicates a uniqueness conflict
func IsConflictError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrEmailTaken.Code ||
			domainErr.Code == ErrAccountTaken.Code ||
			domainErr.Code == ErrAlreadyImported.Code
	}
	return false
}

// IsUpstreamError checks if an error originated from an upstream service
func IsUpstreamError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == ErrUpstream.Code
	}
	return false
}
