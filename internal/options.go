package internal

import (
	"github.com/frankli0324/go-kwest/internal/dialer"
	"go.uber.org/zap"
)

type config struct {
	transport   Handler
	dialer      dialer.Dialer
	logger      *zap.Logger
	middlewares []Middleware
}

// Option configures a New(...) call.
type Option func(*config)

// WithDialer sets the dialer used by the default transport.
func WithDialer(d dialer.Dialer) Option {
	return func(c *config) { c.dialer = d }
}

// WithTransport replaces the terminal stage. It takes precedence over
// WithDialer.
func WithTransport(h Handler) Option {
	return func(c *config) { c.transport = h }
}

// WithLogger sets the logger of the client and its transport.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMiddlewares attaches mws in order once the client is built.
func WithMiddlewares(mws ...Middleware) Option {
	return func(c *config) {
		c.middlewares = append(c.middlewares, mws...)
	}
}
