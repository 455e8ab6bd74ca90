// Package inject provides deterministic failure injection for unreliable
// external dependencies, enabling reproducible retry tests.
package inject

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jzx17/orderflow/pkg/types"
)

// Injector decides whether the next simulated call should fail
type Injector interface {
	// ShouldFail reports whether the next attempt should fail
	ShouldFail() bool

	// Attempts returns the monotonically increasing attempt counter
	Attempts() int64
}

// FailureInjector fails with a configured probability, driven by a
// caller-supplied pseudo-random source. With an explicit seed, the same call
// sequence yields the identical sequence of results.
type FailureInjector struct {
	rate     float64
	rng      *rand.Rand
	mu       sync.Mutex
	attempts int64
}

// New creates a failure injector. It fails with a ConfigError when rate is
// outside [0.0, 1.0]. Without WithSeed or WithSource the injector is
// time-seeded, for production-like runs.
func New(rate float64, opts ...Option) (*FailureInjector, error) {
	if rate < 0.0 || rate > 1.0 {
		return nil, types.NewConfigError("failureRate", "must be between 0.0 and 1.0")
	}

	f := &FailureInjector{
		rate: rate,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// ShouldFail reports whether the next attempt should fail and advances the
// attempt counter.
func (f *FailureInjector) ShouldFail() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	return f.rng.Float64() < f.rate
}

// Attempts returns the number of ShouldFail calls so far
func (f *FailureInjector) Attempts() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

// Option is a configuration option for the failure injector
type Option func(*FailureInjector)

// WithSeed seeds the random source for deterministic replays
func WithSeed(seed int64) Option {
	return func(f *FailureInjector) {
		f.rng = rand.New(rand.NewSource(seed))
	}
}

// WithSource sets a custom random source
func WithSource(src rand.Source) Option {
	return func(f *FailureInjector) {
		f.rng = rand.New(src)
	}
}
