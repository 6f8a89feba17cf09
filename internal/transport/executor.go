package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"net"

	"github.com/frankli0324/go-kwest/internal/model"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Dialer opens the connection an exchange runs on. For https targets the
// returned connection is expected to have completed its TLS handshake.
type Dialer interface {
	Dial(ctx context.Context, r *model.Request) (net.Conn, error)
}

// DialerFunc adapts a function to a [Dialer].
type DialerFunc func(ctx context.Context, r *model.Request) (net.Conn, error)

func (f DialerFunc) Dial(ctx context.Context, r *model.Request) (net.Conn, error) {
	return f(ctx, r)
}

var errNoDialer = errors.New("no dialer configured")

type binding func(ctx context.Context, ex *exchange, out *Outgoing) (*model.RawResponse, error)

var bindings = map[string]binding{
	"http":  HTTP1{}.RoundTrip,
	"https": roundTripTLS,
}

func roundTripTLS(ctx context.Context, ex *exchange, out *Outgoing) (*model.RawResponse, error) {
	if c, ok := ex.conn.(*tls.Conn); ok && c.ConnectionState().NegotiatedProtocol == http2.NextProtoTLS {
		return H2{}.RoundTrip(ctx, ex, out)
	}
	return HTTP1{}.RoundTrip(ctx, ex, out)
}

// Executor is the terminal stage of a dispatch chain.
type Executor struct {
	Dialer Dialer
	Logger *zap.Logger
}

func (e *Executor) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Execute performs exactly one network exchange for r.
//
// Cancelling ctx aborts the exchange. The abort stays armed until the
// returned response is closed, so an unfinished body read is interrupted
// as well.
func (e *Executor) Execute(ctx context.Context, r *model.Request) (*model.Response, error) {
	if !r.Normalized() {
		var err error
		if r, err = model.Normalize(r); err != nil {
			return nil, err
		}
	}
	bind, ok := bindings[r.URI.Scheme]
	if !ok {
		return nil, &model.UnsupportedSchemeError{Scheme: r.URI.Scheme}
	}
	out, err := Project(r)
	if err != nil {
		return nil, err
	}
	if err := context.Cause(ctx); err != nil {
		return nil, &model.CancellationError{Err: err}
	}

	if e.Dialer == nil {
		return nil, &model.TransportError{Op: "dial", Err: errNoDialer}
	}

	uri := r.URI.String()
	log := e.logger().With(zap.String("method", r.Method), zap.String("uri", uri))
	conn, err := e.Dialer.Dial(ctx, r)
	if err != nil {
		return nil, e.failure(ctx, &model.TransportError{Op: "dial", URI: uri, Err: err})
	}
	log.Debug("exchange opened", zap.Stringer("remote", conn.RemoteAddr()))

	ex := newExchange(conn, uri)
	stop := context.AfterFunc(ctx, func() {
		log.Debug("exchange aborted", zap.Error(context.Cause(ctx)))
		ex.Abort()
	})
	raw, err := bind(ctx, ex, out)
	if err != nil {
		stop()
		ex.close()
		return nil, e.failure(ctx, err)
	}

	resp := model.Decorate(raw)
	resp.OnClose(func() {
		stop()
		ex.close()
	})
	if cause := context.Cause(ctx); cause != nil {
		resp.Close() // a response racing the cancellation is discarded
		return nil, &model.CancellationError{Err: cause}
	}
	return resp, nil
}

// failure turns any error seen after ctx was cancelled into a
// CancellationError, whatever the network layer reported.
func (e *Executor) failure(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil {
		return &model.CancellationError{Err: cause}
	}
	return err
}
