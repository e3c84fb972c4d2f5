package api

import (
	"testing"

	"github.com/gcbaptista/go-article-discovery/model"
)

func TestValidationResult_AddError(t *testing.T) {
	result := &ValidationResult{Valid: true}

	result.AddError("field1", "error message")

	if result.Valid {
		t.Error("Expected Valid to be false after adding error")
	}

	if len(result.Errors) != 1 {
		t.Errorf("Expected 1 error, got %d", len(result.Errors))
	}

	if result.Errors[0].Field != "field1" {
		t.Errorf("Expected field 'field1', got '%s'", result.Errors[0].Field)
	}

	if result.Errors[0].Message != "error message" {
		t.Errorf("Expected message 'error message', got '%s'", result.Errors[0].Message)
	}
}

func TestValidationResult_HasErrors(t *testing.T) {
	result := &ValidationResult{Valid: true}

	if result.HasErrors() {
		t.Error("Expected HasErrors to be false for empty result")
	}

	result.AddError("field", "message")

	if !result.HasErrors() {
		t.Error("Expected HasErrors to be true after adding error")
	}
}

func TestValidateArticleID(t *testing.T) {
	tests := []struct {
		name      string
		articleID string
		wantValid bool
	}{
		{"valid id", "go-concurrency", true},
		{"empty id", "", false},
		{"leading whitespace", " go-concurrency", false},
		{"trailing whitespace", "go-concurrency ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateArticleID(tt.articleID)
			if result.Valid != tt.wantValid {
				t.Errorf("ValidateArticleID(%q) valid = %v, want %v", tt.articleID, result.Valid, tt.wantValid)
			}
		})
	}
}

func TestValidateJobStatus(t *testing.T) {
	status, result := ValidateJobStatus("")
	if status != nil || result.HasErrors() {
		t.Errorf("Expected empty status to mean no filter, got %v / %v", status, result.Errors)
	}

	status, result = ValidateJobStatus("running")
	if result.HasErrors() {
		t.Fatalf("Unexpected errors: %v", result.Errors)
	}
	if status == nil || *status != model.JobStatusRunning {
		t.Errorf("Expected running status, got %v", status)
	}

	status, result = ValidateJobStatus("paused")
	if !result.HasErrors() {
		t.Error("Expected error for unknown status")
	}
	if status != nil {
		t.Errorf("Expected nil status on error, got %v", *status)
	}
}

func TestValidateSessionEvent(t *testing.T) {
	tests := []struct {
		name       string
		event      SessionEvent
		wantFields []string
	}{
		{"set search with empty value clears", SessionEvent{Type: EventSetSearch}, nil},
		{"clear all", SessionEvent{Type: EventClearAll}, nil},
		{"url changed", SessionEvent{Type: EventURLChanged, Value: "?tag=go"}, nil},
		{"toggle tag", SessionEvent{Type: EventToggleTag, Value: "go"}, nil},
		{"toggle blank tag", SessionEvent{Type: EventToggleTag, Value: "  "}, []string{"value"}},
		{"valid sort", SessionEvent{Type: EventSetSort, SortBy: "Title", Order: "ASC"}, nil},
		{"invalid sort", SessionEvent{Type: EventSetSort, SortBy: "views", Order: "up"}, []string{"sort_by", "order"}},
		{"remove tag filter", SessionEvent{Type: EventRemoveFilter, Filter: &model.Filter{Kind: model.FilterKindTag, Value: "go"}}, nil},
		{"remove search filter", SessionEvent{Type: EventRemoveFilter, Filter: &model.Filter{Kind: model.FilterKindSearch}}, nil},
		{"remove without filter", SessionEvent{Type: EventRemoveFilter}, []string{"filter"}},
		{"remove tag without value", SessionEvent{Type: EventRemoveFilter, Filter: &model.Filter{Kind: model.FilterKindTag}}, []string{"filter.value"}},
		{"remove unknown kind", SessionEvent{Type: EventRemoveFilter, Filter: &model.Filter{Kind: "author"}}, []string{"filter.kind"}},
		{"missing type", SessionEvent{}, []string{"type"}},
		{"unknown type", SessionEvent{Type: "scroll"}, []string{"type"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := tt.event
			result := ValidateSessionEvent(&event)

			var fields []string
			for _, err := range result.Errors {
				fields = append(fields, err.Field)
			}
			if len(fields) != len(tt.wantFields) {
				t.Fatalf("Expected errors on %v, got %v", tt.wantFields, fields)
			}
			for i := range fields {
				if fields[i] != tt.wantFields[i] {
					t.Errorf("Expected error on %q, got %q", tt.wantFields[i], fields[i])
				}
			}
		})
	}
}
