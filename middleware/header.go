package middleware

import (
	"context"

	kwest "github.com/frankli0324/go-kwest"
)

// SetHeader returns a middleware that sets a request header for every request.
//
// It clones the request before mutation to avoid touching the original request.
// If key is empty, it returns a no-op middleware.
func SetHeader(key, value string) kwest.Middleware {
	return func(ctx context.Context, r *kwest.Request, next kwest.Handler) (*kwest.Response, error) {
		if key == "" {
			return next(ctx, r)
		}
		return next(ctx, r.WithHeader(key, value))
	}
}

// DefaultHeaders sets every header of h that the request does not carry yet.
func DefaultHeaders(h map[string]string) kwest.Middleware {
	defaults := kwest.NewHeader(h)
	return func(ctx context.Context, r *kwest.Request, next kwest.Handler) (*kwest.Response, error) {
		var c *kwest.Request
		defaults.Each(func(name, value string) {
			if r.Header.Has(name) {
				return
			}
			if c == nil {
				c = r.Clone()
			}
			c.Header.Add(name, value)
		})
		if c == nil {
			return next(ctx, r)
		}
		return next(ctx, c)
	}
}

// UserAgent sets the User-Agent header unless the request already has one.
func UserAgent(ua string) kwest.Middleware {
	if ua == "" {
		return SetHeader("", "")
	}
	return DefaultHeaders(map[string]string{"User-Agent": ua})
}
