package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation targets an id that does not
// exist. The state is left untouched.
var ErrNotFound = errors.New("not found")

// ValidationError is the named failure for rejected input. It is raised
// synchronously at the store boundary and never persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
