// package chain composes middlewares around a terminal handler.
//
// [Compose] is the pure primitive, [Ref] is a mutable cell holding a
// composed handler for callers that want in-place registration.
package chain

import (
	"context"
	"sync"

	"github.com/frankli0324/go-kwest/internal/model"
)

// Handler performs a dispatch for a canonical request.
type Handler = func(ctx context.Context, req *model.Request) (*model.Response, error)

// Middleware intercepts a dispatch. It may alter the request before calling
// next, and inspect or replace the response or error afterwards.
type Middleware func(ctx context.Context, req *model.Request, next Handler) (*model.Response, error)

// Compose wraps h with mws. The last middleware becomes the outermost layer:
// Compose(h, a, b) sends a request through b, then a, then h.
//
// No layer ever sees a nil response together with a nil error: such a
// result is turned into [model.ErrNoResponse].
func Compose(h Handler, mws ...Middleware) Handler {
	h = settled(h)
	for _, mw := range mws {
		if mw == nil {
			continue
		}
		h = wrap(h, mw)
	}
	return h
}

func wrap(next Handler, mw Middleware) Handler {
	return func(ctx context.Context, req *model.Request) (*model.Response, error) {
		return check(mw(ctx, req, next))
	}
}

func settled(h Handler) Handler {
	return func(ctx context.Context, req *model.Request) (*model.Response, error) {
		return check(h(ctx, req))
	}
}

func check(resp *model.Response, err error) (*model.Response, error) {
	if resp == nil && err == nil {
		return nil, model.ErrNoResponse
	}
	return resp, err
}

// Ref holds the current composition. The zero value holds nothing.
type Ref struct {
	mu sync.RWMutex
	h  Handler
}

// Load returns the current composition without copying it.
func (r *Ref) Load() Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.h
}

func (r *Ref) Store(h Handler) {
	r.mu.Lock()
	r.h = h
	r.mu.Unlock()
}

// Update atomically replaces the composition with fn(current).
func (r *Ref) Update(fn func(Handler) Handler) {
	r.mu.Lock()
	r.h = fn(r.h)
	r.mu.Unlock()
}
