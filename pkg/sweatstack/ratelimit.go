package sweatstack

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/sweatstack/sweatstack-mcp/internal/metrics"
)

// RateLimiter spaces out API requests using a token bucket.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows requestsPerSecond requests with bursts up to 2x the rate.
func NewRateLimiter(requestsPerSecond int) *RateLimiter {
	burst := requestsPerSecond * 2
	if burst < 1 {
		burst = 1
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a request may be sent or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}

	reservation := rl.limiter.Reserve()
	if !reservation.OK() {
		return fmt.Errorf("rate limit exceeded: cannot reserve a request token")
	}

	delay := reservation.Delay()
	metrics.RateLimitWait.Observe(delay.Seconds())
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	}
}
