package entity

import (
	"errors"
	"fmt"
)

// ErrValidationFailed is the sentinel matched by every ValidationError
// via errors.Is.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is allows errors.Is(err, ErrValidationFailed) to match ValidationError values.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
