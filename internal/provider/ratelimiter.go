package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket sized for the CoinGecko free tier,
// which caps anonymous callers at roughly 8 requests per minute. A
// full bucket of `capacity` tokens drains on demand and regains one
// token per `every` elapsed since the last refill.
type RateLimiter struct {
	mu       sync.Mutex
	capacity int
	tokens   int
	every    time.Duration
	refilled time.Time
}

// NewRateLimiter returns a full bucket holding capacity tokens that
// refills one token per every.
func NewRateLimiter(capacity int, every time.Duration) *RateLimiter {
	return &RateLimiter{
		capacity: capacity,
		tokens:   capacity,
		every:    every,
		refilled: time.Now(),
	}
}

// Wait consumes a token, blocking until one is available or ctx ends.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.take() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.every):
		}
	}
}

func (r *RateLimiter) take() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if earned := int(time.Since(r.refilled) / r.every); earned > 0 {
		r.tokens = min(r.tokens+earned, r.capacity)
		r.refilled = r.refilled.Add(time.Duration(earned) * r.every)
	}
	if r.tokens == 0 {
		return false
	}
	r.tokens--
	return true
}
