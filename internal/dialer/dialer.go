package dialer

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/frankli0324/go-kwest/internal/model"
)

// Dialers handle pretty much everything related to the actual connection,
// including setting a proxy for each request, setting resolvers, etc.
type Dialer interface {
	// Dial returns a connection to the request's target. for https targets
	// the TLS handshake is already done.
	Dial(ctx context.Context, r *model.Request) (net.Conn, error)
	Unwrap() Dialer
}

type CoreDialer struct {
	ResolveConfig *ResolveConfig

	TLSConfig *tls.Config // the config to use, used as given

	GetProxy    func(ctx context.Context, r *model.Request) (string, error)
	ProxyConfig *ProxyConfig

	SocketConfig *SocketConfig
}

// SocketConfig tunes the sockets opened by a [CoreDialer].
type SocketConfig struct {
	SendBuffer int           // SO_SNDBUF in bytes, 0 keeps the system default
	RecvBuffer int           // SO_RCVBUF in bytes, 0 keeps the system default
	KeepAlive  time.Duration // 0 keeps the net.Dialer default, negative disables
}

func (c *SocketConfig) Clone() *SocketConfig {
	if c == nil {
		return nil
	}
	cc := *c
	return &cc
}

func (c *SocketConfig) keepAlive() time.Duration {
	if c == nil {
		return 0
	}
	return c.KeepAlive
}

// Default is used by clients that were not given a dialer.
var Default = &CoreDialer{
	TLSConfig: &tls.Config{
		NextProtos: []string{"h2", "http/1.1"},
	},
	ProxyConfig: &ProxyConfig{
		TLSConfig: &tls.Config{}, // don't want h2
	},
}

func (d *CoreDialer) Clone() *CoreDialer {
	return &CoreDialer{
		ResolveConfig: d.ResolveConfig.Clone(),
		TLSConfig:     d.TLSConfig.Clone(),
		GetProxy:      d.GetProxy,
		ProxyConfig:   d.ProxyConfig.Clone(),
		SocketConfig:  d.SocketConfig.Clone(),
	}
}

func (d *CoreDialer) Unwrap() Dialer {
	return nil
}
