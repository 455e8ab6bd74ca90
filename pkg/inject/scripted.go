package inject

import "sync"

// ScriptedInjector replays an explicit outcome sequence. Once the script is
// consumed every further attempt succeeds. Useful for pinning exact retry
// schedules in tests without reasoning about random sequences.
type ScriptedInjector struct {
	mu       sync.Mutex
	script   []bool
	attempts int64
}

// NewScripted creates an injector that fails exactly where script is true
func NewScripted(script ...bool) *ScriptedInjector {
	return &ScriptedInjector{script: script}
}

// ShouldFail replays the next scripted outcome
func (s *ScriptedInjector) ShouldFail() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.attempts
	s.attempts++
	if i < int64(len(s.script)) {
		return s.script[i]
	}
	return false
}

// Attempts returns the number of ShouldFail calls so far
func (s *ScriptedInjector) Attempts() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}
