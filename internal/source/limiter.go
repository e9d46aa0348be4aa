package source

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter gates outbound provider calls to a minimum wall-clock interval of
// 60s / requestsPerMinute between calls. One limiter is shared across the
// sequential calls of a single adapter instance; it is not intended for
// concurrent callers.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter creates a limiter for the given request rate. Rates below 1
// are treated as 1 request per minute.
func NewLimiter(requestsPerMinute int) *Limiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &Limiter{rl: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait suspends the caller until the interval since the previous call has
// elapsed. Other goroutines are not blocked. Returns early with the
// context's error on cancellation.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.rl.Wait(ctx)
}
