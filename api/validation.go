// Package api provides validation utilities for API request handling.
package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-article-discovery/model"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateArticleID validates an article ID path parameter
func ValidateArticleID(articleID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if articleID == "" {
		result.AddError("articleId", "Article ID is required")
		return result
	}

	if strings.TrimSpace(articleID) != articleID {
		result.AddError("articleId", "Article ID cannot have leading or trailing whitespace")
	}

	return result
}

// ValidateJobStatus parses an optional job status filter. An empty string
// means no filter and yields a nil status.
func ValidateJobStatus(raw string) (*model.JobStatus, *ValidationResult) {
	result := &ValidationResult{Valid: true}
	if raw == "" {
		return nil, result
	}

	status := model.JobStatus(raw)
	switch status {
	case model.JobStatusPending, model.JobStatusRunning, model.JobStatusCompleted,
		model.JobStatusFailed, model.JobStatusCancelled:
		return &status, result
	}

	result.AddError("status", "Invalid status. Valid values: pending, running, completed, failed, cancelled")
	return nil, result
}

// ValidateSessionEvent checks that a client frame carries the fields its type needs
func ValidateSessionEvent(event *SessionEvent) *ValidationResult {
	result := &ValidationResult{Valid: true}

	switch event.Type {
	case EventSetSearch, EventClearAll:
	case EventURLChanged:
	case EventToggleTag:
		if strings.TrimSpace(event.Value) == "" {
			result.AddError("value", "Tag is required")
		}
	case EventSetSort:
		if _, ok := model.ParseSortBy(event.SortBy); !ok {
			result.AddError("sort_by", "Invalid sort field. Valid values: date, title")
		}
		if _, ok := model.ParseSortOrder(event.Order); !ok {
			result.AddError("order", "Invalid sort order. Valid values: asc, desc")
		}
	case EventRemoveFilter:
		if event.Filter == nil {
			result.AddError("filter", "Filter is required")
			break
		}
		switch event.Filter.Kind {
		case model.FilterKindSearch, model.FilterKindSort:
		case model.FilterKindTag:
			if event.Filter.Value == "" {
				result.AddError("filter.value", "Tag filter requires a value")
			}
		default:
			result.AddError("filter.kind", "Invalid filter kind. Valid values: search, tag, sort")
		}
	case "":
		result.AddError("type", "Event type is required")
	default:
		result.AddError("type", "Unknown event type '"+event.Type+"'")
	}

	return result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}
