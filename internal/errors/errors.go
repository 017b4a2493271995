// Package errors provides centralized error definitions for stepsched.
//
// It defines sentinel errors for the conditions the scheduler and its
// collaborators can detect, and typed errors that carry context about where
// the condition arose.
//
// # Error Types
//
//   - MalformedEdgeError: a precedence line that could not be parsed
//   - CycleError: the schedule drained while steps were still blocked
//   - ValidationError: invalid options or configuration values
//
// # Usage
//
//	err := errors.NewCycleError([]string{"X", "Y"})
//	if errors.Is(err, errors.ErrDependencyCycle) { ... }
//
//	var cycleErr *errors.CycleError
//	if errors.As(err, &cycleErr) {
//	    fmt.Println(cycleErr.Pending)
//	}
//
// All errors raised by a scheduling run are terminal for that run. Nothing in
// this package is retryable: the caller fixes the input and runs again.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrMalformedEdge indicates a precedence pair could not be parsed.
	ErrMalformedEdge = New("malformed edge")
	// ErrDependencyCycle indicates the precedence graph could not be fully
	// scheduled: it contains a cycle, or a step depends on one that does.
	ErrDependencyCycle = New("dependency cycle detected")
	// ErrUnknownCost indicates the cost function has no duration for a step.
	ErrUnknownCost = New("unknown step cost")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error
// -----------------------------------------------------------------------------

// baseError holds the message and cause shared by the typed errors.
type baseError struct {
	message string
	cause   error
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// -----------------------------------------------------------------------------
// Domain Errors
// -----------------------------------------------------------------------------

// MalformedEdgeError reports a precedence line the parser could not read.
//
// Example:
//
//	err := errors.NewMalformedEdgeError(3, "Step C before A")
//	fmt.Println(err) // "malformed edge [line=3]: cannot parse "Step C before A""
type MalformedEdgeError struct {
	baseError
	Source string
	Line   int
	Text   string
}

// NewMalformedEdgeError creates a MalformedEdgeError for a 1-based line.
func NewMalformedEdgeError(line int, text string) *MalformedEdgeError {
	return &MalformedEdgeError{
		baseError: baseError{
			message: fmt.Sprintf("cannot parse %q", text),
			cause:   ErrMalformedEdge,
		},
		Line: line,
		Text: text,
	}
}

// WithSource records the file the line came from.
func (e *MalformedEdgeError) WithSource(source string) *MalformedEdgeError {
	e.Source = source
	return e
}

// WithReason replaces the default message with a more specific one.
func (e *MalformedEdgeError) WithReason(reason string) *MalformedEdgeError {
	e.message = reason
	return e
}

// Error returns the formatted error message.
func (e *MalformedEdgeError) Error() string {
	var parts []string
	if e.Source != "" {
		parts = append(parts, fmt.Sprintf("source=%s", e.Source))
	}
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("line=%d", e.Line))
	}
	prefix := "malformed edge"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("malformed edge [%s]", strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *MalformedEdgeError) Is(target error) bool {
	if _, ok := target.(*MalformedEdgeError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// CycleError is returned when a schedule drains while some steps never
// became ready. Pending lists those steps in ascending order.
//
// Example:
//
//	err := errors.NewCycleError([]string{"X", "Y"})
//	fmt.Println(err) // "dependency cycle detected: 2 steps never completed [X Y]"
type CycleError struct {
	baseError
	Pending   []string
	Completed int
}

// NewCycleError creates a CycleError for the given never-completed labels.
func NewCycleError(pending []string) *CycleError {
	cp := make([]string, len(pending))
	copy(cp, pending)
	return &CycleError{
		baseError: baseError{
			message: "dependency cycle detected",
			cause:   ErrDependencyCycle,
		},
		Pending: cp,
	}
}

// WithCompleted records how many steps finished before the schedule stalled.
func (e *CycleError) WithCompleted(n int) *CycleError {
	e.Completed = n
	return e
}

// Error returns the formatted error message.
func (e *CycleError) Error() string {
	noun := "steps"
	if len(e.Pending) == 1 {
		noun = "step"
	}
	return fmt.Sprintf("%s: %d %s never completed [%s]",
		e.message, len(e.Pending), noun, strings.Join(e.Pending, " "))
}

// Is checks if this error matches the target.
func (e *CycleError) Is(target error) bool {
	if _, ok := target.(*CycleError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("must be at least 1")
//	err = err.WithField("workers").WithValue(0)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{message: message},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Wrapping
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
