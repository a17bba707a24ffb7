package service

import (
	"fmt"
	"sync"
	"time"
)

// Settings holds the runtime-mutable retry configuration. The admin config
// endpoint updates it; the webhook and manual-retry paths take an immutable
// RetryPolicy snapshot per invocation, so an update never changes a run that
// is already in flight.
type Settings struct {
	mu          sync.RWMutex
	maxAttempts int
	delay       time.Duration
}

// NewSettings creates Settings with the boot-time defaults.
func NewSettings(maxAttempts int, delay time.Duration) *Settings {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if delay < 0 {
		delay = 0
	}
	return &Settings{maxAttempts: maxAttempts, delay: delay}
}

// Policy returns an immutable snapshot of the current retry policy.
func (s *Settings) Policy() RetryPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RetryPolicy{MaxAttempts: s.maxAttempts, Delay: s.delay}
}

// Update applies the given values; nil fields are left unchanged.
// Parameters:
//   - maxAttempts: new attempt budget, must be >= 1.
//   - delay: new inter-attempt delay, must be >= 0.
//
// Returns:
//   - RetryPolicy: the policy after the update.
//   - error: non-nil if a value is out of range; nothing is applied then.
func (s *Settings) Update(maxAttempts *int, delay *time.Duration) (RetryPolicy, error) {
	if maxAttempts != nil && *maxAttempts < 1 {
		return RetryPolicy{}, fmt.Errorf("crm_max_retries must be at least 1, got %d", *maxAttempts)
	}
	if delay != nil && *delay < 0 {
		return RetryPolicy{}, fmt.Errorf("crm_retry_delay must not be negative, got %s", *delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if maxAttempts != nil {
		s.maxAttempts = *maxAttempts
	}
	if delay != nil {
		s.delay = *delay
	}
	return RetryPolicy{MaxAttempts: s.maxAttempts, Delay: s.delay}, nil
}
