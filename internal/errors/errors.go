// Package errors provides typed errors for the finance tracker.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error cases.
var (
	// ErrNotFound indicates a resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the user is not authenticated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the row exists but belongs to another user.
	// Outward-facing it is indistinguishable from ErrNotFound.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates caller-supplied data violates a precondition.
	ErrValidation = errors.New("validation error")

	// ErrConflict indicates a resource conflict (e.g., still referenced).
	ErrConflict = errors.New("resource conflict")

	// ErrConsistency indicates an atomic ledger or position write could not
	// complete. The store rolled back; nothing was half-applied.
	ErrConsistency = errors.New("consistency failure")

	// ErrInternal indicates an internal server error.
	ErrInternal = errors.New("internal error")
)

// AppError is a structured application error.
type AppError struct {
	// Type is the error type (sentinel error).
	Type error
	// Message is the user-facing error message.
	Message string
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error type.
func (e *AppError) Unwrap() error {
	return e.Type
}

// Is checks if this error matches the target.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Type, target)
}

// NotFound creates a not found error.
func NotFound(resource string) *AppError {
	return &AppError{
		Type:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return &AppError{
		Type:    ErrUnauthorized,
		Message: message,
	}
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return &AppError{
		Type:    ErrForbidden,
		Message: message,
	}
}

// Validation creates a validation error.
func Validation(message string) *AppError {
	return &AppError{
		Type:    ErrValidation,
		Message: message,
	}
}

// Validationf creates a validation error with formatting.
func Validationf(format string, args ...any) *AppError {
	return &AppError{
		Type:    ErrValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// Conflict creates a conflict error.
func Conflict(message string) *AppError {
	return &AppError{
		Type:    ErrConflict,
		Message: message,
	}
}

// Consistency wraps a failed atomic write. The message shown to callers is
// deliberately opaque; the cause is for server-side logs only.
func Consistency(cause error) *AppError {
	return &AppError{
		Type:    ErrConsistency,
		Message: "operation could not be completed",
		Cause:   cause,
	}
}

// Internal wraps an unexpected failure. Like Consistency, the message shown
// to callers is opaque; the cause is for server-side logs.
func Internal(cause error) *AppError {
	return &AppError{
		Type:    ErrInternal,
		Message: "something went wrong",
		Cause:   cause,
	}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if an error is an authentication error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden checks if an error is a forbidden error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsConsistency checks if an error is a consistency failure.
func IsConsistency(err error) bool {
	return errors.Is(err, ErrConsistency)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Forbidden maps to 404: another user's row must look like a missing row.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrForbidden):
		return 404
	case errors.Is(err, ErrUnauthorized):
		return 401
	case errors.Is(err, ErrValidation):
		return 400
	case errors.Is(err, ErrConflict):
		return 409
	default:
		return 500
	}
}
