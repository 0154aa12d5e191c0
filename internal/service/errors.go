package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to HTTP
// status codes.
var (
	// ErrInvalidInput indicates a request the service rejects before touching
	// the store. API layer should map this to HTTP 400 Bad Request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrShareNotFound indicates an unknown or revoked share token.
	// API layer should map this to HTTP 404 Not Found.
	ErrShareNotFound = errors.New("shared topic not found")

	// ErrUnavailable indicates an optional backend (Redis, Meilisearch) is not
	// configured. API layer should map this to HTTP 503 Service Unavailable.
	ErrUnavailable = errors.New("feature not available")
)

// ServiceError wraps an unexpected failure with the service and operation
// that produced it.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Err: err}
}

func (e *ServiceError) Error() string {
	name := e.Op
	if e.Service != "" {
		name = e.Service + " service " + e.Op
	}
	if e.Err == nil {
		return fmt.Sprintf("%s operation failed", name)
	}
	return fmt.Sprintf("%s operation failed: %v", name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// invalid wraps a message as ErrInvalidInput.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
