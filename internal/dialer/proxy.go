package dialer

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"math/rand"
	"net"
	"net/url"

	"github.com/frankli0324/go-kwest/internal/model"
	"github.com/frankli0324/go-kwest/internal/transport"
	"golang.org/x/net/proxy"
)

type ProxyConfig struct {
	TLSConfig      *tls.Config // the [*tls.Config] to use with proxy, if nil, *[CoreDialer.TLSConfig] will be used
	ResolveLocally bool
	ResolveConfig  *ResolveConfig // overrides the resolver config for dialer for proxy
}

func (c *ProxyConfig) Clone() *ProxyConfig {
	if c == nil {
		return nil
	}
	return &ProxyConfig{
		TLSConfig:      c.TLSConfig.Clone(),
		ResolveLocally: c.ResolveLocally,
		ResolveConfig:  c.ResolveConfig.Clone(),
	}
}

var h1Transport = transport.HTTP1{}

// StaticProxy returns a GetProxy function that always picks proxyURL.
func StaticProxy(proxyURL string) func(context.Context, *model.Request) (string, error) {
	return func(context.Context, *model.Request) (string, error) {
		return proxyURL, nil
	}
}

func (d *CoreDialer) tryDialProxy(ctx context.Context, r *model.Request) (net.Conn, error) {
	if d.GetProxy == nil {
		return nil, nil
	}
	p, err := d.GetProxy(ctx, r)
	if err != nil || p == "" {
		return nil, err
	}
	proxyU, err := url.Parse(p)
	if err != nil {
		return nil, err
	}
	return d.DialContextOverProxy(ctx, r.URI, proxyU)
}

// DialContextOverProxy creates a connection over http/socks proxy.
// This part of logic may be reused when wrapping *[CoreDialer] into
// a new custom [Dialer]
func (d *CoreDialer) DialContextOverProxy(ctx context.Context, remote model.URI, p *url.URL) (net.Conn, error) {
	addr, port := remote.Host, remote.Port
	if d.ProxyConfig != nil && d.ProxyConfig.ResolveLocally {
		dnsCfg := d.ProxyConfig.ResolveConfig.Merge(d.ResolveConfig)
		ips, err := d.lookup(ctx, dnsCfg, addr)
		if err != nil {
			return nil, err
		}
		if len(ips) == 0 {
			return nil, &net.DNSError{Err: "no such host", Name: addr, IsNotFound: true}
		}
		addr = ips[rand.Intn(len(ips))].String()
	}
	target := net.JoinHostPort(addr, port)

	proxyPort := p.Port()
	if proxyPort == "" {
		proxyPort = schemes[p.Scheme]
	}
	switch p.Scheme {
	case "socks", "socks5", "socks5h":
		return d.dialSocks(ctx, p, proxyPort, target)
	case "http", "https":
	default:
		return nil, errors.New("unsupported proxy scheme:" + p.Scheme)
	}

	conn, err := d.dialDirect(ctx, d.ResolveConfig, p.Hostname(), proxyPort)
	if err != nil {
		return nil, err
	}
	if p.Scheme == "https" {
		var tlsCfg *tls.Config
		if d.ProxyConfig != nil {
			tlsCfg = d.ProxyConfig.TLSConfig.Clone()
		}
		if tlsCfg == nil {
			tlsCfg = d.TLSConfig.Clone()
		}
		if tlsCfg == nil {
			tlsCfg = &tls.Config{}
		}
		if tlsCfg.ServerName == "" {
			tlsCfg.ServerName = p.Hostname()
		}
		c := tls.Client(conn, tlsCfg)
		if err := c.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		conn = c
	}

	var header []model.Field
	if p.User != nil {
		header = append(header, model.Field{
			Name:  "Proxy-Authorization",
			Value: "Basic " + base64.StdEncoding.EncodeToString([]byte(proxyAuth(p.User))),
		})
	}
	if err := h1Transport.Connect(conn, target, header); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func proxyAuth(u *url.Userinfo) string {
	pass, _ := u.Password()
	return u.Username() + ":" + pass
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func (f dialFunc) Dial(network, addr string) (net.Conn, error) {
	return f(context.Background(), network, addr)
}

func (f dialFunc) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return f(ctx, network, addr)
}

func (d *CoreDialer) dialSocks(ctx context.Context, p *url.URL, proxyPort, target string) (net.Conn, error) {
	var auth *proxy.Auth
	if p.User != nil {
		pass, _ := p.User.Password()
		auth = &proxy.Auth{User: p.User.Username(), Password: pass}
	}
	forward := dialFunc(func(ctx context.Context, _, _ string) (net.Conn, error) {
		return d.dialDirect(ctx, d.ResolveConfig, p.Hostname(), proxyPort)
	})
	socks, err := proxy.SOCKS5("tcp", net.JoinHostPort(p.Hostname(), proxyPort), auth, forward)
	if err != nil {
		return nil, err
	}
	cd, ok := socks.(proxy.ContextDialer)
	if !ok {
		return nil, errors.New("socks dialer does not support contexts")
	}
	return cd.DialContext(ctx, "tcp", target)
}
