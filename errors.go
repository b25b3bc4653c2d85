package grantkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for GrantKit operations. Nil entities and empty principal
// references are not errors: permission queries degrade them to safe
// defaults instead of failing.
var (
	// ErrInvalidLevel is returned when an access level definition is invalid
	// or a required level is not held.
	ErrInvalidLevel = errors.New("grantkit: invalid access level")

	// ErrInvalidVisibility is returned when a visibility definition is invalid.
	ErrInvalidVisibility = errors.New("grantkit: invalid visibility")

	// ErrStorage is returned when a document store operation fails.
	ErrStorage = errors.New("grantkit: storage error")

	// ErrNotFound is returned when a document or attached object is missing.
	ErrNotFound = errors.New("grantkit: not found")

	// ErrInvalidConfig is returned when a deployment config cannot be applied.
	ErrInvalidConfig = errors.New("grantkit: invalid config")
)

// Error wraps a sentinel error with additional context about the entity and
// principal involved.
type Error struct {
	Err       error  // Underlying sentinel error
	Message   string // Additional context
	Entity    string // Entity document reference involved
	Principal string // Principal reference involved
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithEntity adds the entity reference to the error.
func (e *Error) WithEntity(ref string) *Error {
	e.Entity = ref
	return e
}

// WithPrincipal adds the principal reference to the error.
func (e *Error) WithPrincipal(ref string) *Error {
	e.Principal = ref
	return e
}

// IsStorage checks if an error originated in the document store.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsNotFound checks if an error reports a missing document or object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
