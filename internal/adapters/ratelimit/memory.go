// Package ratelimit provides sliding-window implementations of
// ports.RateLimiter: an in-process limiter for single-instance
// deployments and a Redis-backed one for multi-replica deployments.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/openquest/questlog/internal/ports"
)

// MemoryLimiter is a mutex-guarded sliding-window limiter keyed by an
// arbitrary string (client IP in practice). Counts attempts regardless
// of the eventual request outcome.
type MemoryLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	attempts map[string][]time.Time
}

// MemoryOption configures a MemoryLimiter.
type MemoryOption func(*MemoryLimiter)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) { l.now = now }
}

// NewMemoryLimiter creates an in-process limiter allowing max attempts
// per window per key.
func NewMemoryLimiter(max int, window time.Duration, opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		max:      max,
		window:   window,
		now:      time.Now,
		attempts: make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records an attempt for key and reports whether it is within the window budget.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (ports.RateDecision, error) {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.attempts[key][:0]
	for _, t := range l.attempts[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.max {
		l.attempts[key] = kept
		// The oldest kept attempt determines when a slot frees up.
		retryAfter := kept[0].Add(l.window).Sub(now)
		return ports.RateDecision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	kept = append(kept, now)
	l.attempts[key] = kept
	return ports.RateDecision{Allowed: true, Remaining: l.max - len(kept)}, nil
}

// Prune drops keys with no attempts inside the window. Called
// periodically by the owner to bound memory on long-running processes.
func (l *MemoryLimiter) Prune() {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, times := range l.attempts {
		live := false
		for _, t := range times {
			if t.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.attempts, key)
		}
	}
}

var _ ports.RateLimiter = (*MemoryLimiter)(nil)
