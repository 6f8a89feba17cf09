package model

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var defaultPorts = map[string]string{
	"http": "80", "https": "443",
}

// URI is a fully resolved target of a request.
type URI struct {
	Scheme string
	Host   string // lower-cased, IDNA encoded, no brackets around IPv6 literals
	Port   string // explicit port, or the default port of Scheme
	Path   string // escaped path plus query, never empty
	Auth   string // "user:password" taken from the userinfo part, if any
}

// ResolveURI parses raw and resolves it into a [URI].
func ResolveURI(raw string) (URI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URI{}, &InputError{Input: raw, Reason: "malformed uri", Err: err}
	}
	return ResolveURL(u)
}

// ResolveURL resolves an already parsed URL into a [URI].
func ResolveURL(u *url.URL) (URI, error) {
	if u == nil {
		return URI{}, &InputError{Reason: "nil url"}
	}
	if u.Scheme == "" || u.Host == "" {
		return URI{}, &InputError{Input: u.String(), Reason: "uri must be absolute"}
	}
	host, err := asciiHost(u.Hostname())
	if err != nil {
		return URI{}, &InputError{Input: u.String(), Reason: "invalid host", Err: err}
	}
	scheme := strings.ToLower(u.Scheme)
	port := u.Port()
	if port == "" {
		port = defaultPorts[scheme]
	}
	uri := URI{
		Scheme: scheme,
		Host:   host,
		Port:   port,
		Path:   u.RequestURI(),
	}
	if u.User != nil {
		uri.Auth = u.User.Username()
		if p, ok := u.User.Password(); ok {
			uri.Auth += ":" + p
		}
	}
	return uri, nil
}

func asciiHost(host string) (string, error) {
	if host == "" {
		return "", &InputError{Reason: "empty host"}
	}
	for i := 0; i < len(host); i++ {
		if host[i] >= 0x80 {
			return idna.Lookup.ToASCII(host)
		}
	}
	return strings.ToLower(host), nil
}

// Resolved reports whether every component a transport needs is present.
func (u URI) Resolved() bool {
	return u.Scheme != "" && u.Host != "" && u.Path != ""
}

// HostPort returns the address to dial.
func (u URI) HostPort() string {
	return net.JoinHostPort(u.Host, u.Port)
}

// Authority returns the value of the Host header: the port is only
// included when it differs from the scheme's default.
func (u URI) Authority() string {
	if u.Port == "" || u.Port == defaultPorts[u.Scheme] {
		if strings.IndexByte(u.Host, ':') >= 0 {
			return "[" + u.Host + "]"
		}
		return u.Host
	}
	return net.JoinHostPort(u.Host, u.Port)
}

func (u URI) String() string {
	return u.Scheme + "://" + u.Authority() + u.Path
}
