package middleware

import (
	"context"

	kwest "github.com/frankli0324/go-kwest"
	"github.com/google/uuid"
)

// DefaultRequestIDHeader is used by RequestID when no header is given.
const DefaultRequestIDHeader = "X-Request-Id"

// RequestID tags every request with a random UUID in header, keeping an
// id the caller already set.
func RequestID(header string) kwest.Middleware {
	if header == "" {
		header = DefaultRequestIDHeader
	}
	return func(ctx context.Context, r *kwest.Request, next kwest.Handler) (*kwest.Response, error) {
		if r.Header.Get(header) != "" {
			return next(ctx, r)
		}
		return next(ctx, r.WithHeader(header, uuid.NewString()))
	}
}
