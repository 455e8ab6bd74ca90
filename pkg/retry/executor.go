// Package retry provides the retry executor for pipeline steps
package retry

import (
	"context"
	"log/slog"

	"github.com/jzx17/orderflow/pkg/types"
)

// AttemptFunc is one attempt of a retryable step. A business failure is
// reported through the StepResult; a non-nil error is unrecoverable and is
// propagated without further attempts.
type AttemptFunc[T any] func(ctx context.Context) (types.StepResult[T], error)

// Executor runs step attempts under a retry policy, waiting out backoff
// delays on its clock. One executor is scoped to one policy; it holds no
// per-order state and may be shared across orders.
type Executor struct {
	policy Policy
	clock  types.Clock
	logger *slog.Logger
}

// NewExecutor creates a retry executor
func NewExecutor(policy Policy, opts ...ExecutorOption) *Executor {
	e := &Executor{
		policy: policy,
		clock:  types.NewRealClock(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute runs fn until it succeeds, the policy is exhausted, an
// unrecoverable error occurs, or ctx is done. It returns the final attempt's
// result and the number of attempts made. An exhausted policy is not an
// error: the returned result simply reports the last failure.
func Execute[T any](e *Executor, ctx context.Context, name string, fn AttemptFunc[T]) (types.StepResult[T], int, error) {
	var last types.StepResult[T]

	attempt := 0
	for {
		attempt++

		if err := ctx.Err(); err != nil {
			return last, attempt - 1, err
		}

		res, err := fn(ctx)
		if err != nil {
			// unrecoverable, distinct channel from business failure
			return res, attempt, types.NewStepError(name, err).
				WithContext("attempts", attempt)
		}

		if res.OK() {
			if attempt > 1 {
				e.log().Info("step succeeded after retries",
					"step", name, "attempts", attempt)
			}
			return res, attempt, nil
		}
		last = res

		delay, derr := e.policy.NextDelay(attempt)
		if derr != nil {
			e.log().Warn("step retries exhausted",
				"step", name, "attempts", attempt, "reason", res.Reason())
			return res, attempt, nil
		}

		e.log().Debug("step failed, backing off",
			"step", name, "attempt", attempt, "delay", delay, "reason", res.Reason())

		if delay > 0 {
			timer := e.clock.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return last, attempt, ctx.Err()
			case <-timer.C():
			}
		}
	}
}

func (e *Executor) log() *slog.Logger {
	if e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

// ExecutorOption is a configuration option for the retry executor
type ExecutorOption func(*Executor)

// WithClock sets the clock for backoff waits
func WithClock(clock types.Clock) ExecutorOption {
	return func(e *Executor) {
		e.clock = clock
	}
}

// WithLogger sets the logger for retry events
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}
