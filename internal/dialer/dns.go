package dialer

import (
	"context"
	"net"
)

type ResolveConfig struct {
	CustomDNSServer string            // host:port, port 53 is assumed when omitted
	Network         string            // one of "ip4", "ip6", default is "ip"
	StaticHosts     map[string]string // resembles /etc/hosts
}

func (c *ResolveConfig) Clone() *ResolveConfig {
	if c == nil {
		return nil
	}
	hosts := make(map[string]string, len(c.StaticHosts))
	for k, v := range c.StaticHosts {
		hosts[k] = v
	}
	return &ResolveConfig{
		CustomDNSServer: c.CustomDNSServer,
		Network:         c.Network,
		StaticHosts:     hosts,
	}
}

// Merge returns a config where unset values of c are taken from base.
// static hosts of c shadow the ones of base.
func (c *ResolveConfig) Merge(base *ResolveConfig) *ResolveConfig {
	if c == nil {
		return base.Clone()
	}
	m := c.Clone()
	if base == nil {
		return m
	}
	if m.CustomDNSServer == "" {
		m.CustomDNSServer = base.CustomDNSServer
	}
	if m.Network == "" {
		m.Network = base.Network
	}
	for k, v := range base.StaticHosts {
		if _, ok := m.StaticHosts[k]; !ok {
			m.StaticHosts[k] = v
		}
	}
	return m
}

func (c *ResolveConfig) network() string {
	if c == nil || c.Network == "" {
		return "ip"
	}
	return c.Network
}

func (c *ResolveConfig) staticHost(host string) (string, bool) {
	if c == nil {
		return "", false
	}
	ip, ok := c.StaticHosts[host]
	return ip, ok
}

func (c *ResolveConfig) dnsServer() string {
	if c == nil || c.CustomDNSServer == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(c.CustomDNSServer); err != nil {
		return net.JoinHostPort(c.CustomDNSServer, "53")
	}
	return c.CustomDNSServer
}

// this type should not be used outside this file.
// prevents non-custom DNS server contexts to iterate through all keys
type dnsServerCtx struct {
	context.Context
	server string
}

var dnsServerCtxKey = &dnsServerCtx{nil, "dns-server"} // non-nil pointer to any object, definitely unique

func (c dnsServerCtx) Value(key interface{}) interface{} {
	if key == dnsServerCtxKey {
		return c.server
	}
	return c.Context.Value(key)
}

var customServerResolver = net.Resolver{
	PreferGo: true,
	Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
		if v, ok := ctx.Value(dnsServerCtxKey).(string); ok && v != "" {
			return zeroDialer.DialContext(ctx, network, v)
		}
		return zeroDialer.DialContext(ctx, network, address)
	},
}

func (d *CoreDialer) lookup(ctx context.Context, cfg *ResolveConfig, host string) ([]net.IP, error) {
	if ip, ok := cfg.staticHost(host); ok {
		return []net.IP{net.ParseIP(ip)}, nil
	}
	return d.LookupIPServer(ctx, cfg.network(), host, cfg.dnsServer())
}

// LookupIPServer performs DNS lookup for a host on a custom dns server,
// it calls [net.Resolver.LookupIP] with a Go Resolver behind the scenes.
// This part of logic may be reused when wrapping *[CoreDialer] into
// a new custom [Dialer]
func (d *CoreDialer) LookupIPServer(ctx context.Context, network, host, dns string) ([]net.IP, error) {
	return customServerResolver.LookupIP(dnsServerCtx{ctx, dns}, network, host)
}
