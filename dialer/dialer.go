package dialer

import (
	"github.com/frankli0324/go-kwest/internal/dialer"
)

// Dialers are responsible for creating the connections requests are
// written to and responses are read from. for example, opening a raw TCP
// connection, tunnelling through a proxy and completing the TLS handshake
// of https targets.
//
// A Dialer MUST NOT hold active connection states, which means a Dialer
// must be able to be swapped out from a client without pain. It SHOULD
// hold the connection related configs like [ProxyConfig] or *[crypto/tls.Config].
type Dialer = dialer.Dialer

// CoreDialer is the default implementation of the [Dialer] interface. It
// would be used by a zero value client.
type CoreDialer = dialer.CoreDialer

// ProxyConfig configures how proxies returned by CoreDialer.GetProxy are
// dialed. http, https, socks5 and socks5h proxies are supported.
type ProxyConfig = dialer.ProxyConfig

// we need a dedicated resolver for two scenarios:
//
//  1. Resolve remote address locally in proxied requests
//  2. to customize the DNS server used for resolving hostname
//
// the standard library didn't provide a intuitive way of
// setting DNS server addresses since it only follows the
// system configuration (e.g. /etc/resolv.conf), leaving us only
// one option of using [net.Resolver.Dial] hook with a Go Resolver.
type ResolveConfig = dialer.ResolveConfig

// SocketConfig sets socket buffer sizes and keepalive.
type SocketConfig = dialer.SocketConfig

// Default is the dialer of clients that were not given one.
var Default = dialer.Default

// StaticProxy returns a CoreDialer.GetProxy function always returning proxyURL.
var StaticProxy = dialer.StaticProxy
