package dialer

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/frankli0324/go-kwest/internal/model"
)

var schemes = map[string]string{
	"http": "80", "https": "443", "socks": "1080", "socks5": "1080", "socks5h": "1080",
}

var zeroDialer net.Dialer
var customDnsDialer = net.Dialer{
	Resolver: &customServerResolver,
}

func (d *CoreDialer) Dial(ctx context.Context, r *model.Request) (net.Conn, error) {
	addr, port := r.URI.Host, r.URI.Port
	if port == "" {
		port = schemes[r.URI.Scheme]
	}

	conn, err := d.tryDialProxy(ctx, r)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		conn, err = d.dialDirect(ctx, d.ResolveConfig, addr, port)
		if err != nil {
			return nil, err
		}
	}
	if r.URI.Scheme == "https" {
		config := d.TLSConfig.Clone()
		if config == nil {
			config = &tls.Config{}
		}
		if config.ServerName == "" {
			config.ServerName = addr
		}
		c := tls.Client(conn, config)
		if err := c.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		conn = c
	}
	return conn, nil
}

// dialDirect opens a TCP connection honouring cfg. as of now net.Dialer
// could handle every DNS configuration we expose.
func (d *CoreDialer) dialDirect(ctx context.Context, cfg *ResolveConfig, addr, port string) (net.Conn, error) {
	network, dst := "tcp", net.JoinHostPort(addr, port)
	switch cfg.network() {
	case "ip4":
		network = "tcp4"
	case "ip6":
		network = "tcp6"
	}
	if static, ok := cfg.staticHost(addr); ok {
		dst = net.JoinHostPort(static, port)
	}

	dialer := zeroDialer
	if dns := cfg.dnsServer(); dns != "" {
		ctx = dnsServerCtx{ctx, dns}
		dialer = customDnsDialer
	}
	dialer.KeepAlive = d.SocketConfig.keepAlive()
	dialer.Control = d.SocketConfig.control()
	return dialer.DialContext(ctx, network, dst)
}
