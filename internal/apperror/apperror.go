package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransient marks failures of an external collaborator (the AI
	// provider, a cache) that are safe to degrade to an empty result.
	ErrTransient = errors.New("transient failure")

	// ErrPersistence marks store failures that must fail the request.
	ErrPersistence = errors.New("persistence failure")
)

type AppError struct {
	Err     error  // category sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the category sentinel and the underlying cause, so
// errors.Is matches either.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned for bad credentials. Maps to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Transient wraps a failure of an external dependency during op.
func Transient(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrTransient,
		Message: op + " temporarily unavailable",
		Cause:   cause,
	}
}

// Persistence wraps a store failure during op.
func Persistence(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrPersistence,
		Message: op + " failed",
		Cause:   cause,
	}
}

// IsTransient reports whether err is safe to treat as an empty result.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
