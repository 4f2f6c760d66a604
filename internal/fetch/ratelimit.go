package fetch

import (
	"context"
	"sync"
	"time"
)

// RateLimiter serializes outbound requests so consecutive Wait calls are
// spaced at least minDelay apart. The upstream source enforces an implicit
// global rate limit, so the orchestrator funnels every request through one
// limiter instance rather than relying on ambient module state.
type RateLimiter struct {
	minDelay time.Duration
	mu       sync.Mutex
	last     time.Time
}

// NewRateLimiter creates a limiter enforcing minDelay between requests.
func NewRateLimiter(minDelay time.Duration) *RateLimiter {
	return &RateLimiter{minDelay: minDelay}
}

// Wait blocks until at least minDelay has elapsed since the previous Wait
// returned. Cancelling the context releases the caller early with ctx.Err().
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if !rl.last.IsZero() {
		if elapsed := time.Since(rl.last); elapsed < rl.minDelay {
			select {
			case <-time.After(rl.minDelay - elapsed):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	rl.last = time.Now()
	return nil
}
