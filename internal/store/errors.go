package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store or is owned by another user.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or a stored row cannot be mapped to a valid entity.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrTaskNotFound       = fmt.Errorf("%w: task", ErrNotFound)
	ErrTemplateNotFound   = fmt.Errorf("%w: template", ErrNotFound)
	ErrTagNotFound        = fmt.Errorf("%w: tag", ErrNotFound)
	ErrCompletionNotFound = fmt.Errorf("%w: completion", ErrNotFound)
	ErrTopicNotFound      = fmt.Errorf("%w: journal topic", ErrNotFound)
	ErrPostNotFound       = fmt.Errorf("%w: journal post", ErrNotFound)
	ErrGoalNotFound       = fmt.Errorf("%w: vision goal", ErrNotFound)
	ErrBucketItemNotFound = fmt.Errorf("%w: bucketlist item", ErrNotFound)
	ErrJobNotFound        = fmt.Errorf("%w: job", ErrNotFound)

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "task", "template")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string
	Err       error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
