// Package api provides the gin HTTP surface of the term index server.
package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-term-index/config"
	"github.com/gcbaptista/go-term-index/services"
)

// MaxWordsPerRequest bounds how many words one request may submit.
const MaxWordsPerRequest = 1_000_000

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

// ValidateIndexSettings validates index settings for creation. Defaults are
// applied to settings first.
func ValidateIndexSettings(settings *config.IndexSettings) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if settings == nil {
		result.AddError("settings", "Index settings are required")
		return result
	}

	if settings.Name == "" {
		result.AddError("name", "Index name is required")
		return result
	}

	settings.ApplyDefaults()
	for _, problem := range settings.Validate() {
		result.AddError("settings", problem)
	}

	return result
}

// WordsRequest is the body of PUT /indexes/:indexName/words.
type WordsRequest struct {
	Words []string `json:"words"`
	Text  string   `json:"text"`
}

// ValidateWordsRequest checks that a request carries words or text, within limits.
func ValidateWordsRequest(req *WordsRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Words) == 0 && strings.TrimSpace(req.Text) == "" {
		result.AddError("words", "Provide a non-empty 'words' array or 'text'")
		return result
	}
	if len(req.Words) > MaxWordsPerRequest {
		result.AddError("words", fmt.Sprintf("At most %d words per request (got %d)", MaxWordsPerRequest, len(req.Words)))
	}

	return result
}

// BuildRequest is the body of POST /indexes/:indexName/_build.
type BuildRequest struct {
	Words []string `json:"words"`
}

// ValidateBuildRequest checks that a build has words to insert, within limits.
func ValidateBuildRequest(req *BuildRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Words) == 0 {
		result.AddError("words", "A build needs a non-empty 'words' array")
	}
	if len(req.Words) > MaxWordsPerRequest {
		result.AddError("words", fmt.Sprintf("At most %d words per request (got %d)", MaxWordsPerRequest, len(req.Words)))
	}

	return result
}

// MergeRequest is the body of POST /indexes/:indexName/_merge.
type MergeRequest struct {
	Source string `json:"source"`
}

// ValidateMergeRequest checks the source index name.
func ValidateMergeRequest(req *MergeRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(req.Source) == "" {
		result.AddError("source", "Source index name is required")
	}

	return result
}

// ValidateQueryRequest checks the parts of a query the core does not check itself.
// Blank terms and negative edit budgets are rejected by the trie.
func ValidateQueryRequest(query *services.TermQuery) *ValidationResult {
	result := &ValidationResult{Valid: true}

	switch query.Op {
	case services.QueryOpHas, services.QueryOpPrefix, services.QueryOpNear:
	case "":
		result.AddError("op", "Query operation is required ('has', 'prefix' or 'near')")
	default:
		result.AddError("op", fmt.Sprintf("Unknown query operation '%s'", query.Op))
	}

	switch query.Source {
	case "", services.QuerySourceMemory, services.QuerySourceStream:
	default:
		result.AddError("source", fmt.Sprintf("Unknown source '%s' (use 'memory' or 'stream')", query.Source))
	}

	if query.MaxEdits != nil && query.Op != services.QueryOpNear {
		result.AddError("max_edits", "max_edits only applies to 'near' queries")
	}
	if query.Limit < 0 {
		result.AddError("limit", "Limit cannot be negative")
	}

	return result
}

// RenameRequest is the body of POST /indexes/:indexName/rename.
type RenameRequest struct {
	NewName string `json:"new_name"`
}

// ValidateRenameRequest validates a rename index request
func ValidateRenameRequest(oldName, newName string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if oldName == "" {
		result.AddError("oldName", "Current index name is required")
	}

	if newName == "" {
		result.AddError("new_name", "New name is required and cannot be empty")
	}

	if strings.TrimSpace(newName) != newName {
		result.AddError("new_name", "New name cannot have leading or trailing whitespace")
	}

	if oldName == newName {
		result.AddError("new_name", "New name must be different from current name")
	}

	return result
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}

	return result
}
