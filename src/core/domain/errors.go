package domain

import (
	"errors"
	"fmt"
)

// Domain error types for consistent error handling across the application.
// Infrastructure wraps these; only the HTTP layer translates them into responses.

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable is returned when the backing store cannot lend a connection,
	// either because the pool is saturated or the store is unreachable.
	ErrUnavailable = errors.New("dependency unavailable")
)

// Reasons attached to UnavailableError. They are machine-readable and safe to
// return to clients.
const (
	ReasonPoolExhausted = "pool_exhausted"
	ReasonQueueFull     = "queue_full"
	ReasonConnectFailed = "connect_failed"
	ReasonPoolClosed    = "pool_closed"
	ReasonCanceled      = "canceled"
)

// DomainError wraps a base error with additional context.
// It provides a standard way to add details to domain errors.
type DomainError struct {
	// Base is the underlying error type (e.g., ErrNotFound)
	Base error

	// Message provides human-readable context
	Message string

	// Field indicates which field caused the error (for validation errors)
	Field string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Base.Error(), e.Message, e.Field)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Base.Error(), e.Message)
	}
	return e.Base.Error()
}

// Unwrap returns the base error for errors.Is/As support.
func (e *DomainError) Unwrap() error {
	return e.Base
}

// NewNotFoundError creates a not found error for the named resource.
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{
		Base:    ErrNotFound,
		Message: resource,
	}
}

// NewValidationError creates a validation error for a specific field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Base:    ErrInvalidInput,
		Message: message,
		Field:   field,
	}
}

// UnavailableError reports why a connection could not be borrowed.
// Cause is for operators; Reason is what clients see.
type UnavailableError struct {
	Reason string
	Cause  error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %v", ErrUnavailable.Error(), e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s (%s)", ErrUnavailable.Error(), e.Reason)
}

// Is makes errors.Is(err, ErrUnavailable) hold for every UnavailableError.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// NewUnavailableError creates an unavailable error with a reason and cause.
func NewUnavailableError(reason string, cause error) *UnavailableError {
	return &UnavailableError{Reason: reason, Cause: cause}
}

// UnavailableReason extracts the client-facing reason from err.
// It returns an empty string if err is not an UnavailableError.
func UnavailableReason(err error) string {
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return ue.Reason
	}
	return ""
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnavailable checks if an error means the store could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
