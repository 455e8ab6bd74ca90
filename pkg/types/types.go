// Package types defines core shared types for the orderflow library
package types

import (
	"time"
)

// Option defines a configuration option function
type Option[T any] func(T)

// Result defines the result of asynchronous execution
type Result[R any] struct {
	// Value is the execution result
	Value R

	// Error is the execution error
	Error error

	// Duration is the execution time
	Duration time.Duration
}
