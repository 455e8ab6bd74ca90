// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrAttemptTimeout indicates a single step attempt exceeded its budget
	ErrAttemptTimeout = errors.New("step attempt timed out")

	// ErrInvalidInput indicates invalid input
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError indicates malformed caller input. It is raised before the
// pipeline starts and is never retried.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConfigError indicates invalid construction parameters (retry policy,
// failure injector). Fatal at construction time, never recoverable at runtime.
type ConfigError struct {
	Param   string
	Message string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Param, e.Message)
}

// NewConfigError creates a new configuration error
func NewConfigError(param, message string) *ConfigError {
	return &ConfigError{Param: param, Message: message}
}

// CollaboratorUnavailableError indicates an external collaborator is
// unreachable or misconfigured. This is a distinct channel from business
// failures: it is propagated, not retried, and only after the collaborator's
// fail-closed or fallback rule has been applied.
type CollaboratorUnavailableError struct {
	Collaborator string
	Cause        error
}

// Error implements the error interface
func (e *CollaboratorUnavailableError) Error() string {
	return fmt.Sprintf("collaborator %s unavailable: %v", e.Collaborator, e.Cause)
}

// Unwrap returns the underlying error
func (e *CollaboratorUnavailableError) Unwrap() error {
	return e.Cause
}

// NewCollaboratorUnavailable creates a new collaborator unavailable error
func NewCollaboratorUnavailable(collaborator string, cause error) *CollaboratorUnavailableError {
	return &CollaboratorUnavailableError{Collaborator: collaborator, Cause: cause}
}

// StepError represents an unrecoverable error surfaced by a pipeline step
type StepError struct {
	// Step is the name of the step where the error occurred
	Step string

	// Cause is the underlying error
	Cause error

	// Context contains error context information
	Context map[string]interface{}
}

// Error implements the error interface
func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Cause)
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is a specific error
func (e *StepError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// NewStepError creates a new step error
func NewStepError(step string, cause error) *StepError {
	return &StepError{
		Step:    step,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds error context
func (e *StepError) WithContext(key string, value interface{}) *StepError {
	e.Context[key] = value
	return e
}
