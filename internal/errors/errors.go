// Package errors provides custom error types for pricing errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInvalidModel  = errors.New("invalid model")
	ErrAllocation    = errors.New("lattice allocation failed")
	ErrArgument      = errors.New("invalid argument")
	ErrConfigInvalid = errors.New("invalid configuration")
	ErrJournal       = errors.New("journal error")
)

// ModelError describes which model parameter made a pricing call fail.
// It unwraps to ErrInvalidModel or ErrAllocation.
type ModelError struct {
	Field   string
	Value   interface{}
	Message string
	Err     error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%v: %s (%v): %s", e.Err, e.Field, e.Value, e.Message)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError wrapping ErrInvalidModel.
func NewModelError(field string, value interface{}, message string) *ModelError {
	return &ModelError{
		Field:   field,
		Value:   value,
		Message: message,
		Err:     ErrInvalidModel,
	}
}

// NewAllocationError creates a ModelError wrapping ErrAllocation.
func NewAllocationError(field string, value interface{}, message string) *ModelError {
	return &ModelError{
		Field:   field,
		Value:   value,
		Message: message,
		Err:     ErrAllocation,
	}
}

// ArgumentError represents a command-line argument that could not be used.
type ArgumentError struct {
	Position int
	Name     string
	Text     string
	Err      error
}

func (e *ArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("argument %d (%s) %q: %v", e.Position, e.Name, e.Text, e.Err)
	}
	return fmt.Sprintf("argument %d (%s) %q: invalid", e.Position, e.Name, e.Text)
}

func (e *ArgumentError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrArgument}
	}
	return []error{ErrArgument, e.Err}
}

// NewArgumentError creates a new ArgumentError.
func NewArgumentError(position int, name, text string, err error) *ArgumentError {
	return &ArgumentError{
		Position: position,
		Name:     name,
		Text:     text,
		Err:      err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
