package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrInvalidArgument is returned when a query term is empty or whitespace-only
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCorruptStream is returned when a node stream ends mid-record or a skip runs past its end
	ErrCorruptStream = errors.New("corrupt node stream")

	// ErrIndexNotFound is returned when an index is not found
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexAlreadyExists is returned when trying to create an index that already exists
	ErrIndexAlreadyExists = errors.New("index already exists")

	// ErrIndexNotPersisted is returned when a stream query targets an index that was never persisted
	ErrIndexNotPersisted = errors.New("index not persisted")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidArgumentError reports a rejected query argument together with the operation
type InvalidArgumentError struct {
	Op       string
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid argument %q: %s", e.Op, e.Argument, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NewInvalidArgumentError creates a new InvalidArgumentError
func NewInvalidArgumentError(op, argument string) *InvalidArgumentError {
	return &InvalidArgumentError{Op: op, Argument: argument, Reason: "must not be empty or whitespace"}
}

// NewInvalidArgumentErrorWithReason creates a new InvalidArgumentError with a custom reason
func NewInvalidArgumentErrorWithReason(op, argument, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Op: op, Argument: argument, Reason: reason}
}

// CorruptStreamError identifies the stream operation (step, skip or decode) that could not complete.
type CorruptStreamError struct {
	Op     string
	Offset int64
	Err    error
}

func (e *CorruptStreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt node stream: %s at offset %d: %v", e.Op, e.Offset, e.Err)
	}
	return fmt.Sprintf("corrupt node stream: %s at offset %d", e.Op, e.Offset)
}

func (e *CorruptStreamError) Is(target error) bool {
	return target == ErrCorruptStream
}

func (e *CorruptStreamError) Unwrap() error {
	return e.Err
}

// NewCorruptStreamError creates a new CorruptStreamError
func NewCorruptStreamError(op string, offset int64, err error) *CorruptStreamError {
	return &CorruptStreamError{Op: op, Offset: offset, Err: err}
}

// IndexNotFoundError represents an index not found error with context
type IndexNotFoundError struct {
	IndexName string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("index named '%s' not found", e.IndexName)
}

func (e *IndexNotFoundError) Is(target error) bool {
	return target == ErrIndexNotFound
}

// NewIndexNotFoundError creates a new IndexNotFoundError
func NewIndexNotFoundError(indexName string) *IndexNotFoundError {
	return &IndexNotFoundError{IndexName: indexName}
}

// IndexAlreadyExistsError represents an index already exists error with context
type IndexAlreadyExistsError struct {
	IndexName string
}

func (e *IndexAlreadyExistsError) Error() string {
	return fmt.Sprintf("index named '%s' already exists", e.IndexName)
}

func (e *IndexAlreadyExistsError) Is(target error) bool {
	return target == ErrIndexAlreadyExists
}

// NewIndexAlreadyExistsError creates a new IndexAlreadyExistsError
func NewIndexAlreadyExistsError(indexName string) *IndexAlreadyExistsError {
	return &IndexAlreadyExistsError{IndexName: indexName}
}

// IndexNotPersistedError is returned for stream queries against an index without a node stream file
type IndexNotPersistedError struct {
	IndexName string
}

func (e *IndexNotPersistedError) Error() string {
	return fmt.Sprintf("index named '%s' has no persisted node stream", e.IndexName)
}

func (e *IndexNotPersistedError) Is(target error) bool {
	return target == ErrIndexNotPersisted
}

// NewIndexNotPersistedError creates a new IndexNotPersistedError
func NewIndexNotPersistedError(indexName string) *IndexNotPersistedError {
	return &IndexNotPersistedError{IndexName: indexName}
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
