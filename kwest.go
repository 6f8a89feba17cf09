// Package kwest is an outbound HTTP request pipeline. Middlewares are
// composed around a single terminal transport the way server-side
// frameworks layer handlers, but for client requests:
//
//	c := kwest.New()
//	c.Use(func(ctx context.Context, r *kwest.Request, next kwest.Handler) (*kwest.Response, error) {
//		resp, err := next(ctx, r)
//		if err == nil {
//			resp.SetHeader("x-seen", "1")
//		}
//		return resp, err
//	})
//	resp, err := c.Do(ctx, "http://localhost:3000/")
//
// The last middleware attached with Use is the outermost one. With and
// Fork derive independent clients from a snapshot of the composition.
package kwest

import (
	"io"

	"github.com/frankli0324/go-kwest/internal"
	"github.com/frankli0324/go-kwest/internal/chain"
	"github.com/frankli0324/go-kwest/internal/model"
)

type Client = internal.Client
type Option = internal.Option
type Pending = internal.Pending

type Request = model.Request
type Options = model.Options
type URI = model.URI
type Header = model.Header
type Field = model.Field
type Response = model.Response

type Handler = chain.Handler
type Middleware = chain.Middleware

type InputError = model.InputError
type UnsupportedSchemeError = model.UnsupportedSchemeError
type TransportError = model.TransportError
type CancellationError = model.CancellationError

var (
	ErrBodyClosed = model.ErrBodyClosed
	ErrNoResponse = model.ErrNoResponse
)

// New returns a client dispatching through the default transport unless
// WithTransport says otherwise.
func New(opts ...Option) *Client {
	return internal.New(opts...)
}

// Normalize turns a URI string, *url.URL, URI, Options or Request into the
// canonical Request. It is idempotent.
func Normalize(input interface{}) (*Request, error) {
	return model.Normalize(input)
}

func ResolveURI(raw string) (URI, error) {
	return model.ResolveURI(raw)
}

func NewHeader(m map[string]string) *Header {
	return model.NewHeader(m)
}

func NewResponse(code int, header *Header, body io.Reader) *Response {
	return model.NewResponse(code, header, body)
}

// Compose layers mws atop h without any mutable state; the last middleware
// is the outermost.
func Compose(h Handler, mws ...Middleware) Handler {
	return chain.Compose(h, mws...)
}

var (
	WithDialer      = internal.WithDialer
	WithTransport   = internal.WithTransport
	WithLogger      = internal.WithLogger
	WithMiddlewares = internal.WithMiddlewares
)
