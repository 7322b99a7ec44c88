package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/StatTag/StatWrap-sub000/model"
)

// Request limits.
const (
	MaxQueryLength      = 1000
	MaxResultsLimit     = 1000
	MaxSuggestionLength = 200
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

// ValidateSearchRequest checks the options of a search. An empty query is
// valid and yields empty results.
func ValidateSearchRequest(req *SearchRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Query) > MaxQueryLength {
		result.AddError("query", fmt.Sprintf("Query cannot exceed %d characters", MaxQueryLength))
	}
	if req.Type != "" && !model.DocumentType(req.Type).Valid() {
		result.AddError("type", fmt.Sprintf("Unknown document type '%s'", req.Type))
	}
	if req.MaxResults < 0 {
		result.AddError("maxResults", "maxResults cannot be negative")
	} else if req.MaxResults > MaxResultsLimit {
		result.AddError("maxResults", fmt.Sprintf("maxResults cannot exceed %d", MaxResultsLimit))
	}
	if strings.TrimSpace(req.ProjectID) != req.ProjectID {
		result.AddError("projectId", "Project ID cannot have leading or trailing whitespace")
	}
	if strings.ContainsAny(req.FileType, `/\ `) {
		result.AddError("fileType", "File type must be a bare extension")
	}

	return result
}

// ValidateSuggestionQuery validates the ?q= parameter of the suggestions route
func ValidateSuggestionQuery(partial string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(partial) > MaxSuggestionLength {
		result.AddError("q", fmt.Sprintf("Query cannot exceed %d characters", MaxSuggestionLength))
	}

	return result
}

// ValidateProjects validates project descriptors for initialization
func ValidateProjects(projects []model.Project) *ValidationResult {
	result := &ValidationResult{Valid: true}

	seen := make(map[string]bool, len(projects))
	for i, p := range projects {
		field := fmt.Sprintf("projects[%d]", i)
		if strings.TrimSpace(p.ID) == "" {
			result.AddError(field+".id", "Project ID is required")
			continue
		}
		if seen[p.ID] {
			result.AddError(field+".id", fmt.Sprintf("Duplicate project ID '%s'", p.ID))
		}
		seen[p.ID] = true
		if strings.TrimSpace(p.Path) == "" {
			result.AddError(field+".path", "Project path is required")
		}
	}

	return result
}

// ValidateJobStatus validates a job status filter
func ValidateJobStatus(status string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	switch model.JobStatus(status) {
	case model.JobStatusPending, model.JobStatusRunning, model.JobStatusCompleted, model.JobStatusFailed:
	default:
		result.AddError("status", fmt.Sprintf("Unknown job status '%s'", status))
	}

	return result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}
