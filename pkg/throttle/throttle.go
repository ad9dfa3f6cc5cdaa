package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces outbound requests. A nil *Limiter never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

// New allows maxRequests per window with a burst of maxRequests. It returns
// nil when either value is not positive.
func New(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 || window <= 0 {
		return nil
	}
	r := rate.Every(window / time.Duration(maxRequests))
	return &Limiter{limiter: rate.NewLimiter(r, maxRequests)}
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
