package connector

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// RateLimiter is a token-bucket gate shared across all concurrent callers of
// one connector. Acquire blocks until a token is available or the caller's
// deadline elapses.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter builds a limiter allowing rps sustained requests per second
// with the given burst. rps <= 0 means unconstrained.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (rl *RateLimiter) Acquire(ctx context.Context) error {
	err := rl.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	// Wait fails either because the deadline already passed or because it
	// would not be met given the current bucket state.
	return ErrRateLimitTimeout
}

func (rl *RateLimiter) Limit() float64 {
	return float64(rl.limiter.Limit())
}
