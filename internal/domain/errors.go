package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Generation errors
	ErrCompletionUnavailable ErrorCode = "COMPLETION_UNAVAILABLE"
	ErrQuotaUnmet            ErrorCode = "QUOTA_UNMET"
	ErrEmptyAssessment       ErrorCode = "EMPTY_ASSESSMENT"

	// Assignment / submission errors
	ErrSubmissionNotFound ErrorCode = "SUBMISSION_NOT_FOUND"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

// NewCompletionUnavailableError signals that the completion source produced
// no usable text. It aborts the current skill's generation attempt.
func NewCompletionUnavailableError(err error) *DomainError {
	return NewError(ErrCompletionUnavailable, "Completion source returned no usable text", err)
}

// NewQuotaUnmetError reports that the safety-bound iterations were
// exhausted before the cap was reached. Generated records are kept.
func NewQuotaUnmetError(skill string, generated, deficit int) *DomainError {
	return NewError(ErrQuotaUnmet,
		fmt.Sprintf("Generated %d of %d required challenges for skill %s", generated, deficit, skill), nil)
}

// NewEmptyAssessmentError rejects an assessment that would be persisted
// with zero viable challenges.
func NewEmptyAssessmentError(skill string) *DomainError {
	return NewError(ErrEmptyAssessment,
		fmt.Sprintf("No challenges could be generated for skill %s", skill), nil)
}

// NewSubmissionNotFoundError reports a submission against a pair with no
// PENDING relation.
func NewSubmissionNotFoundError(userID, assessmentID string) *DomainError {
	return NewError(ErrSubmissionNotFound,
		fmt.Sprintf("No pending assignment of assessment %s for user %s", assessmentID, userID), nil)
}
