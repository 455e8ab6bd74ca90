// Package retry provides retry policy implementations for pipeline steps
package retry

import (
	"errors"
	"math"
	"time"

	"github.com/jzx17/orderflow/pkg/types"
)

// ErrExhausted indicates the policy allows no further attempts
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy defines the retry strategy interface
type Policy interface {
	// NextDelay returns the backoff delay before the attempt following
	// attempt (1-indexed, the attempt that just failed). It returns
	// ErrExhausted when no further attempt is allowed.
	NextDelay(attempt int) (time.Duration, error)

	// MaxAttempts returns the maximum number of attempts
	MaxAttempts() int
}

// ExponentialBackoff implements capped exponential backoff.
// For attempt n the delay is initialInterval * coefficient^(n-1), capped at
// maxInterval. A coefficient of 1.0 yields constant backoff; maxAttempts of 1
// means no retries.
type ExponentialBackoff struct {
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
	coefficient     float64
}

// NewExponentialBackoff creates an exponential backoff policy.
// It fails with a ConfigError when maxAttempts < 1, initialInterval <= 0,
// maxInterval < initialInterval, or coefficient < 1.0.
func NewExponentialBackoff(maxAttempts int, initialInterval time.Duration, opts ...BackoffOption) (*ExponentialBackoff, error) {
	p := &ExponentialBackoff{
		maxAttempts:     maxAttempts,
		initialInterval: initialInterval,
		maxInterval:     30 * time.Second,
		coefficient:     2.0,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.maxAttempts < 1 {
		return nil, types.NewConfigError("maxAttempts", "must be at least 1")
	}
	if p.initialInterval <= 0 {
		return nil, types.NewConfigError("initialInterval", "must be positive")
	}
	if p.maxInterval < p.initialInterval {
		return nil, types.NewConfigError("maxInterval", "must not be less than initialInterval")
	}
	if p.coefficient < 1.0 {
		return nil, types.NewConfigError("backoffCoefficient", "must be at least 1.0")
	}

	return p, nil
}

// NextDelay returns the delay before the next attempt
func (p *ExponentialBackoff) NextDelay(attempt int) (time.Duration, error) {
	if attempt < 1 {
		attempt = 1
	}
	if attempt >= p.maxAttempts {
		return 0, ErrExhausted
	}

	delay := time.Duration(float64(p.initialInterval) * math.Pow(p.coefficient, float64(attempt-1)))
	if delay > p.maxInterval || delay < 0 {
		delay = p.maxInterval
	}
	return delay, nil
}

// MaxAttempts returns the maximum number of attempts
func (p *ExponentialBackoff) MaxAttempts() int {
	return p.maxAttempts
}

// NewFixedDelay creates a constant-backoff policy, a convenience for an
// exponential policy with coefficient 1.0 and no cap below the delay.
func NewFixedDelay(maxAttempts int, delay time.Duration) (*ExponentialBackoff, error) {
	return NewExponentialBackoff(maxAttempts, delay,
		WithCoefficient(1.0), WithMaxInterval(delay))
}

// BackoffOption is a configuration option for backoff policies
type BackoffOption func(*ExponentialBackoff)

// WithMaxInterval sets the cap on the backoff delay
func WithMaxInterval(maxInterval time.Duration) BackoffOption {
	return func(p *ExponentialBackoff) {
		p.maxInterval = maxInterval
	}
}

// WithCoefficient sets the backoff multiplier
func WithCoefficient(coefficient float64) BackoffOption {
	return func(p *ExponentialBackoff) {
		p.coefficient = coefficient
	}
}
