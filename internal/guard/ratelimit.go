// Package guard protects calls to slow or metered upstreams.
package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tenpin/leaguebook/internal/domain"
)

// RateLimiter implements a sliding window rate limiter keyed by caller.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter allowing limit calls per window per key.
// A limit of zero or less disables limiting.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Check records a call for key and reports whether it is within the limit.
func (rl *RateLimiter) Check(_ context.Context, key string) domain.GuardResult {
	if rl.limit <= 0 {
		return domain.GuardResult{Allowed: true}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := rl.prune(key, now)

	if len(valid) >= rl.limit {
		return domain.GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %d per %s, retry in %s", rl.limit, rl.window, valid[0].Add(rl.window).Sub(now).Round(time.Second)),
			Guard:   "rate_limiter",
		}
	}

	rl.windows[key] = append(valid, now)
	return domain.GuardResult{Allowed: true}
}

// Remaining returns how many calls key may still make in the current window.
func (rl *RateLimiter) Remaining(key string) int {
	if rl.limit <= 0 {
		return -1
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return max(0, rl.limit-len(rl.prune(key, rl.now())))
}

// prune drops expired entries for key. Keys with nothing left are removed so
// the map does not grow with one-off callers.
func (rl *RateLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	entries := rl.windows[key]
	valid := entries[:0]
	for _, t := range entries {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(rl.windows, key)
		return nil
	}
	rl.windows[key] = valid
	return valid
}
