// Package ratelimit paces outbound requests to rate-limited services.
// Both external clients take a Limiter and call Wait before every request,
// so pacing can be tuned or disabled without touching the clients.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter blocks until the caller may issue its next request.
// *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Every returns a fixed-interval gate: the first Wait passes immediately,
// each following Wait passes at least interval after the previous one.
// A non-positive interval disables pacing.
func Every(interval time.Duration) Limiter {
	if interval <= 0 {
		return Unlimited()
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Unlimited returns a Limiter that never blocks (but still honours a
// cancelled context).
func Unlimited() Limiter {
	return rate.NewLimiter(rate.Inf, 0)
}

// OrUnlimited returns l, or Unlimited when l is nil.
func OrUnlimited(l Limiter) Limiter {
	if l == nil {
		return Unlimited()
	}
	return l
}
