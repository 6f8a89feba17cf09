package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	kwest "github.com/frankli0324/go-kwest"
	"go.uber.org/zap"
)

var sensitive = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
	"x-api-key":           {},
}

// SafeHeaders flattens h for logging with credentials redacted.
func SafeHeaders(h *kwest.Header) map[string]string {
	out := h.Map()
	for name := range out {
		if _, ok := sensitive[strings.ToLower(name)]; ok {
			out[name] = "[redacted]"
		}
	}
	return out
}

// Logging logs one line per dispatch. Failures are logged at warn level,
// cancellations at debug level.
func Logging(log *zap.Logger) kwest.Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, r *kwest.Request, next kwest.Handler) (*kwest.Response, error) {
		start := time.Now()
		resp, err := next(ctx, r)
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.Stringer("uri", r.URI),
			zap.Duration("elapsed", time.Since(start)),
		}
		var cerr *kwest.CancellationError
		switch {
		case errors.As(err, &cerr):
			log.Debug("request cancelled", append(fields, zap.Error(err))...)
		case err != nil:
			log.Warn("request failed", append(fields, zap.Error(err))...)
		case resp == nil:
			log.Warn("request failed", append(fields, zap.Error(kwest.ErrNoResponse))...)
		default:
			fields = append(fields, zap.Int("status", resp.StatusCode))
			if ce := log.Check(zap.DebugLevel, "request headers"); ce != nil {
				ce.Write(append(fields, zap.Any("headers", SafeHeaders(r.Header)))...)
			}
			log.Info("request done", fields...)
		}
		return resp, err
	}
}
