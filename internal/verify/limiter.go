package verify

import (
	"sync"
	"time"
)

// AttemptLimiter caps failed match attempts in a sliding window. Exceeding
// the cap forces the manual exception fallback instead of letting someone
// brute-force the matcher with photos.
type AttemptLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	failures []time.Time
	now      func() time.Time
}

// NewAttemptLimiter creates a limiter allowing limit failures per window.
// A limit of zero or less disables limiting.
func NewAttemptLimiter(limit int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// RecordFailure notes one failed match attempt and reports whether the
// budget is now exhausted.
func (l *AttemptLimiter) RecordFailure() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limit <= 0 {
		return false
	}

	now := l.now()
	l.prune(now)
	l.failures = append(l.failures, now)
	return len(l.failures) >= l.limit
}

// Exhausted reports whether the failure budget is spent.
func (l *AttemptLimiter) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limit <= 0 {
		return false
	}
	l.prune(l.now())
	return len(l.failures) >= l.limit
}

// Remaining returns how many failures are left before the cap.
func (l *AttemptLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limit <= 0 {
		return -1
	}
	l.prune(l.now())
	remaining := l.limit - len(l.failures)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset drops all recorded failures.
func (l *AttemptLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = nil
}

// prune drops failures that fell out of the window. Caller holds mu.
func (l *AttemptLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	kept := l.failures[:0]
	for _, ts := range l.failures {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.failures = kept
}
