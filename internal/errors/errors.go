package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrNotInitialized is returned when an operation needs an initialized service
	ErrNotInitialized = errors.New("search service not initialized")

	// ErrIndexingInProgress is returned when an initialize or reindex is already running
	ErrIndexingInProgress = errors.New("indexing already in progress")

	// ErrDocumentNotFound is returned when a document is not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedVersion is returned when an index payload has an unknown version
	ErrUnsupportedVersion = errors.New("unsupported index version")

	// ErrClosed is returned after the service has been closed
	ErrClosed = errors.New("search service closed")
)

// DocumentNotFoundError represents a document not found error with context
type DocumentNotFoundError struct {
	DocumentID string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document with ID '%s' not found", e.DocumentID)
}

func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrDocumentNotFound
}

// NewDocumentNotFoundError creates a new DocumentNotFoundError
func NewDocumentNotFoundError(documentID string) *DocumentNotFoundError {
	return &DocumentNotFoundError{DocumentID: documentID}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UnsupportedVersionError is returned by import when the payload version is not accepted.
// It matches both ErrUnsupportedVersion and ErrInvalidInput.
type UnsupportedVersionError struct {
	Got      string
	Expected string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported index version '%s' (expected '%s')", e.Got, e.Expected)
}

func (e *UnsupportedVersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion || target == ErrInvalidInput
}

// NewUnsupportedVersionError creates a new UnsupportedVersionError
func NewUnsupportedVersionError(got, expected string) *UnsupportedVersionError {
	return &UnsupportedVersionError{Got: got, Expected: expected}
}
