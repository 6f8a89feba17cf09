package middleware

import (
	"context"
	"time"

	kwest "github.com/frankli0324/go-kwest"
)

type result struct {
	resp *kwest.Response
	err  error
}

// Timeout bounds a dispatch by d. The rest of the chain races a timer; on
// expiry the dispatch is cancelled, the in-flight exchange is aborted and
// a [kwest.CancellationError] wrapping [context.DeadlineExceeded] is
// returned. A response that made it in time keeps the deadline until it
// is closed, so the body read is bounded too.
//
// d <= 0 disables the middleware.
func Timeout(d time.Duration) kwest.Middleware {
	return func(ctx context.Context, r *kwest.Request, next kwest.Handler) (*kwest.Response, error) {
		if d <= 0 {
			return next(ctx, r)
		}
		ctx, cancel := context.WithTimeout(ctx, d)

		done := make(chan result, 1)
		go func() {
			resp, err := next(ctx, r)
			done <- result{resp, err}
		}()

		select {
		case res := <-done:
			if res.err != nil || res.resp == nil {
				cancel()
				return nil, res.err
			}
			res.resp.OnClose(cancel)
			return res.resp, nil
		case <-ctx.Done():
			cause := context.Cause(ctx)
			cancel()
			go func() { // next may ignore ctx, don't leak what it returns
				if res := <-done; res.resp != nil {
					res.resp.Close()
				}
			}()
			return nil, &kwest.CancellationError{Err: cause}
		}
	}
}
