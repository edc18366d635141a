package api

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-term-index/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrorCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"
	ErrorCodeJobNotFound       ErrorCode = "JOB_NOT_FOUND"
	ErrorCodeIndexExists       ErrorCode = "INDEX_ALREADY_EXISTS"
	ErrorCodeIndexNotPersisted ErrorCode = "INDEX_NOT_PERSISTED"
	ErrorCodeInvalidQuery      ErrorCode = "INVALID_QUERY"

	// Server Error Codes (5xx)
	ErrorCodeInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrorCodeCorruptStream  ErrorCode = "CORRUPT_STREAM"
	ErrorCodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	c.JSON(statusCode, APIErrorResponse(code, message, details...))
}

// SendValidationError sends a validation error with one detail per problem
func SendValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}

	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}

// SendJobNotFoundError sends a standardized job not found error
func SendJobNotFoundError(c *gin.Context, jobID string) {
	SendError(c, http.StatusNotFound, ErrorCodeJobNotFound,
		"Job '"+jobID+"' not found")
}

// SendAsyncNotSupportedError is sent when the engine cannot run background jobs
func SendAsyncNotSupportedError(c *gin.Context) {
	SendError(c, http.StatusNotImplemented, ErrorCodeNotImplemented,
		"Background jobs are not supported by this engine")
}

// SendEngineError maps an engine or query error to its status code and error code.
func SendEngineError(c *gin.Context, operation string, err error) {
	var validation *errors.ValidationError
	switch {
	case stderrors.As(err, &validation):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed",
			ErrorDetail{Field: validation.Field, Message: validation.Message, Code: "VALIDATION_ERROR"})
	case stderrors.Is(err, errors.ErrIndexNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeIndexNotFound, err.Error())
	case stderrors.Is(err, errors.ErrJobNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeJobNotFound, err.Error())
	case stderrors.Is(err, errors.ErrIndexAlreadyExists):
		SendError(c, http.StatusConflict, ErrorCodeIndexExists, err.Error())
	case stderrors.Is(err, errors.ErrIndexNotPersisted):
		SendError(c, http.StatusConflict, ErrorCodeIndexNotPersisted, err.Error())
	case stderrors.Is(err, errors.ErrInvalidArgument):
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, err.Error())
	case stderrors.Is(err, errors.ErrCorruptStream):
		SendError(c, http.StatusInternalServerError, ErrorCodeCorruptStream,
			"Node stream is damaged during "+operation+": "+err.Error())
	default:
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
			"Internal error during "+operation+": "+err.Error())
	}
}
