package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrArticleNotFound is returned when no article carries the requested ID
	ErrArticleNotFound = errors.New("article not found")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrContentLoad is returned when a content source cannot produce articles
	ErrContentLoad = errors.New("content load failed")
)

// ArticleNotFoundError represents an article not found error with context
type ArticleNotFoundError struct {
	ID string
}

func (e *ArticleNotFoundError) Error() string {
	return fmt.Sprintf("article with ID '%s' not found", e.ID)
}

func (e *ArticleNotFoundError) Is(target error) bool {
	return target == ErrArticleNotFound
}

// NewArticleNotFoundError creates a new ArticleNotFoundError
func NewArticleNotFoundError(id string) *ArticleNotFoundError {
	return &ArticleNotFoundError{ID: id}
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

// ContentLoadError reports a failure to read articles from a source.
// Path is set when a single file inside the source is at fault.
type ContentLoadError struct {
	Source string
	Path   string
	Err    error
}

func (e *ContentLoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("loading %s from '%s': %v", e.Path, e.Source, e.Err)
	}
	return fmt.Sprintf("loading content from '%s': %v", e.Source, e.Err)
}

func (e *ContentLoadError) Is(target error) bool {
	return target == ErrContentLoad
}

func (e *ContentLoadError) Unwrap() error {
	return e.Err
}

// NewContentLoadError creates a new ContentLoadError
func NewContentLoadError(source string, err error, path ...string) *ContentLoadError {
	loadErr := &ContentLoadError{Source: source, Err: err}
	if len(path) > 0 {
		loadErr.Path = path[0]
	}
	return loadErr
}
