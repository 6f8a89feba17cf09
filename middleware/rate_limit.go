package middleware

import (
	"context"
	"fmt"

	kwest "github.com/frankli0324/go-kwest"
	"golang.org/x/time/rate"
)

// RateLimit delays dispatches so that they do not exceed limiter.
func RateLimit(limiter *rate.Limiter) kwest.Middleware {
	return func(ctx context.Context, r *kwest.Request, next kwest.Handler) (*kwest.Response, error) {
		if err := limiter.Wait(ctx); err != nil {
			if cause := context.Cause(ctx); cause != nil {
				return nil, &kwest.CancellationError{Err: cause}
			}
			return nil, fmt.Errorf("kwest: rate limit: %w", err)
		}
		return next(ctx, r)
	}
}

// NewRateLimit is RateLimit with a fresh limiter allowing rps dispatches per
// second with the given burst. Non-positive values fall back to 5 rps and a
// burst of 10.
func NewRateLimit(rps float64, burst int) kwest.Middleware {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return RateLimit(rate.NewLimiter(rate.Limit(rps), burst))
}
