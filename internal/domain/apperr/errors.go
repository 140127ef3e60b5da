// Package apperr defines the error taxonomy shared by all services.
// Errors carry a kind sentinel plus a message; callers branch on the kind
// via errors.Is and the boundary layer translates kinds to HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing entities and cross-reference mismatches
	ErrNotFound = errors.New("not found")

	// ErrForbidden is a role or ownership guard failure
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized is reserved for missing or invalid actor identity
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidState means the transition is not legal from the current status
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation covers malformed input: missing fields, bad date
	// ranges, bad enum values
	ErrValidation = errors.New("validation failed")

	// ErrConflict is a duplicate unique field on creation
	ErrConflict = errors.New("conflict")
)

// Error pairs a kind sentinel with a caller-facing message
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

func newf(kind error, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// NotFoundf creates a NotFound error
func NotFoundf(format string, args ...interface{}) error {
	return newf(ErrNotFound, format, args...)
}

// Forbiddenf creates a Forbidden error
func Forbiddenf(format string, args ...interface{}) error {
	return newf(ErrForbidden, format, args...)
}

// Unauthorizedf creates an Unauthorized error
func Unauthorizedf(format string, args ...interface{}) error {
	return newf(ErrUnauthorized, format, args...)
}

// InvalidStatef creates an InvalidState error
func InvalidStatef(format string, args ...interface{}) error {
	return newf(ErrInvalidState, format, args...)
}

// Validationf creates a Validation error
func Validationf(format string, args ...interface{}) error {
	return newf(ErrValidation, format, args...)
}

// Conflictf creates a Conflict error
func Conflictf(format string, args ...interface{}) error {
	return newf(ErrConflict, format, args...)
}
