package internal

import (
	"context"

	"github.com/frankli0324/go-kwest/internal/chain"
	"github.com/frankli0324/go-kwest/internal/dialer"
	"github.com/frankli0324/go-kwest/internal/model"
	"github.com/frankli0324/go-kwest/internal/transport"
	"go.uber.org/zap"
)

type Handler = chain.Handler
type Middleware = chain.Middleware

// Client is a dispatcher: an ordered composition of middlewares around a
// terminal transport. A zero value Client dispatches straight to the
// network through [dialer.Default].
type Client struct {
	chain chain.Ref

	transport Handler // terminal stage, nil means the default executor
	dialer    dialer.Dialer
	logger    *zap.Logger
}

func New(opts ...Option) *Client {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Client{
		transport: cfg.transport,
		dialer:    cfg.dialer,
		logger:    cfg.logger,
	}
	return c.Use(cfg.middlewares...)
}

func (c *Client) log() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

func (c *Client) terminal() Handler {
	if c.transport != nil {
		return c.transport
	}
	var d transport.Dialer = dialer.Default
	if c.dialer != nil {
		d = c.dialer
	}
	e := &transport.Executor{Dialer: d, Logger: c.log()}
	return e.Execute
}

// handler returns the composition as it is at the time of the call.
func (c *Client) handler() Handler {
	if h := c.chain.Load(); h != nil {
		return h
	}
	return c.terminal()
}

// Use wraps the client in mws, in place. The last "Use"d mw becomes the
// outermost layer: it sees the request first and the response last.
func (c *Client) Use(mws ...Middleware) *Client {
	if len(mws) == 0 {
		return c
	}
	c.chain.Update(func(h Handler) Handler {
		if h == nil {
			h = c.terminal()
		}
		return chain.Compose(h, mws...)
	})
	return c
}

// With returns a new client with mw layered atop the current composition.
// c itself is left untouched.
func (c *Client) With(mw Middleware) *Client {
	return c.Fork().Use(mw)
}

// Fork returns an independent client starting from a snapshot of the
// current composition. Later Use calls on either side do not affect the
// other.
func (c *Client) Fork() *Client {
	f := &Client{
		transport: c.transport,
		dialer:    c.dialer,
		logger:    c.logger,
	}
	f.chain.Store(c.chain.Load())
	return f
}

// Do normalizes input and dispatches it through the composition. If ctx is
// cancelled before Do returns, the in-flight exchange is aborted and the
// result is always a [model.CancellationError].
func (c *Client) Do(ctx context.Context, input interface{}) (*model.Response, error) {
	req, err := model.Normalize(input)
	if err != nil {
		return nil, err
	}
	if cause := context.Cause(ctx); cause != nil {
		return nil, &model.CancellationError{Err: cause}
	}

	resp, err := c.handler()(ctx, req)
	if resp == nil && err == nil {
		err = model.ErrNoResponse
	}
	if cause := context.Cause(ctx); cause != nil {
		if resp != nil {
			resp.Close()
		}
		c.log().Debug("dispatch cancelled",
			zap.String("method", req.Method),
			zap.String("uri", req.URI.String()),
			zap.Error(cause),
		)
		return nil, &model.CancellationError{Err: cause}
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
