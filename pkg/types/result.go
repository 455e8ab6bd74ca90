// Package types defines the step outcome wrapper shared by every step
package types

// StepResult is the outcome of one step attempt: success with a value, or a
// business failure with a reason. Business failures are expected and feed the
// retry policy; they are never modeled as Go errors.
type StepResult[T any] struct {
	value  T
	reason string
	ok     bool
}

// Success creates a successful step result carrying value
func Success[T any](value T) StepResult[T] {
	return StepResult[T]{value: value, ok: true}
}

// Failure creates a failed step result carrying a human-readable reason
func Failure[T any](reason string) StepResult[T] {
	return StepResult[T]{reason: reason}
}

// OK reports whether the step succeeded
func (r StepResult[T]) OK() bool {
	return r.ok
}

// Value returns the success value; zero value for failures
func (r StepResult[T]) Value() T {
	return r.value
}

// Reason returns the failure reason; empty for successes
func (r StepResult[T]) Reason() string {
	return r.reason
}
