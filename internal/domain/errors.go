// Package domain defines core types, interfaces, and errors for catalog resolution.
package domain

import (
	"fmt"
	"io/fs"
)

// NotFoundError indicates a catalog could not be found at any candidate location.
// Location is the last location that was attempted.
type NotFoundError struct {
	Location string
}

func (e *NotFoundError) Error() string { return "unable to find: " + e.Location }

// Unwrap lets callers match the error with errors.Is(err, fs.ErrNotExist).
func (e *NotFoundError) Unwrap() error { return fs.ErrNotExist }

// ValidationError indicates a descriptor that cannot be resolved as given.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrNotFound creates a NotFoundError for the attempted location.
func ErrNotFound(location string) *NotFoundError {
	return &NotFoundError{Location: location}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
