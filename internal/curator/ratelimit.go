package curator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateLimiter is a token bucket refilled continuously at a fixed rate.
type rateLimiter struct {
	last     time.Time
	now      func() time.Time
	interval time.Duration
	tokens   float64
	capacity float64
	mu       sync.Mutex
}

// newRateLimiter allows bursts of up to requestsPerMinute requests.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &rateLimiter{
		last:     time.Now(),
		now:      time.Now,
		interval: time.Minute / time.Duration(requestsPerMinute),
		tokens:   float64(requestsPerMinute),
		capacity: float64(requestsPerMinute),
	}
}

// wait blocks until a token is available or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	for {
		delay := rl.reserve()
		if delay == 0 {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// reserve takes a token when one is available and otherwise returns how long to wait.
func (rl *rateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.tokens += float64(now.Sub(rl.last)) / float64(rl.interval)
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}
	rl.last = now

	if rl.tokens >= 1 {
		rl.tokens--
		return 0
	}
	return time.Duration((1 - rl.tokens) * float64(rl.interval))
}
