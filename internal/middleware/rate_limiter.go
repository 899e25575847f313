package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/mroshb/anonchat_bot/pkg/clock"
)

const cleanupInterval = 5 * time.Minute

// RateLimiter is a fixed-window per-user limiter held in memory.
type RateLimiter struct {
	clock       clock.Clock
	maxRequests int
	window      time.Duration

	mu     sync.Mutex
	limits map[int64]*userLimit
}

type userLimit struct {
	requests  int
	resetTime time.Time
}

// NewRateLimiter creates a new rate limiter. Call Run to evict stale entries.
func NewRateLimiter(maxRequests int, window time.Duration, clk clock.Clock) *RateLimiter {
	if clk == nil {
		clk = clock.Real()
	}
	return &RateLimiter{
		clock:       clk,
		maxRequests: maxRequests,
		window:      window,
		limits:      make(map[int64]*userLimit),
	}
}

// Allow records one request for userID and reports whether it fits in the
// current window.
func (rl *RateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()

	limit, exists := rl.limits[userID]
	if !exists || !now.Before(limit.resetTime) {
		rl.limits[userID] = &userLimit{
			requests:  1,
			resetTime: now.Add(rl.window),
		}
		return true
	}

	if limit.requests >= rl.maxRequests {
		return false
	}

	limit.requests++
	return true
}

// RetryAfter returns how long userID must wait before the next request is
// allowed, rounded up to whole seconds. Zero means a request would pass now.
func (rl *RateLimiter) RetryAfter(userID int64) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	limit, exists := rl.limits[userID]
	if !exists || !now.Before(limit.resetTime) || limit.requests < rl.maxRequests {
		return 0
	}

	wait := limit.resetTime.Sub(now)
	if rounded := wait.Truncate(time.Second); rounded < wait {
		wait = rounded + time.Second
	}
	return wait
}

// Run evicts expired windows until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) error {
	ticker := rl.clock.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rl.evictExpired()
		}
	}
}

func (rl *RateLimiter) evictExpired() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for userID, limit := range rl.limits {
		if !now.Before(limit.resetTime) {
			delete(rl.limits, userID)
		}
	}
}

// Len returns the number of tracked users.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limits)
}
