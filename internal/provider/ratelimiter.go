package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by every request a provider makes.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	capacity   int
	every      time.Duration
	lastRefill time.Time
}

// NewRateLimiter allows a burst of capacity calls and adds one token each
// interval.
func NewRateLimiter(capacity int, every time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     capacity,
		capacity:   capacity,
		every:      every,
		lastRefill: time.Now(),
	}
}

// PerMinute spreads perMinute calls evenly over a minute.
func PerMinute(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return NewRateLimiter(perMinute, time.Minute/time.Duration(perMinute))
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		delay := r.take()
		if delay == 0 {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// take consumes a token and returns 0, or returns how long until the next
// token is due.
func (r *RateLimiter) take() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if n := int(now.Sub(r.lastRefill) / r.every); n > 0 {
		r.tokens = min(r.capacity, r.tokens+n)
		r.lastRefill = r.lastRefill.Add(time.Duration(n) * r.every)
	}
	if r.tokens > 0 {
		r.tokens--
		return 0
	}
	return r.lastRefill.Add(r.every).Sub(now)
}
