package utils

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter bounds the outbound request rate to a remote source. One
// instance is shared by every fetch in the process; callers are admitted in
// the order they reserved a slot.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows requests requests per window. A non-positive window or
// request count disables limiting.
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 || window <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	// burst of 1 keeps requests evenly spaced instead of front-loading the window
	every := window / time.Duration(requests)
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(every), 1)}
}

// WaitForSlot blocks until the shared budget admits one more request and
// reserves it.
func (r *RateLimiter) WaitForSlot(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
