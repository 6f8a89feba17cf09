// package transport is the terminal stage of a dispatch: it opens exactly one
// network exchange for a canonical request and returns the decorated response.
//
// message syntax follows:
//
//	HTTP Semantics (RFC9110)
//	HTTP/1.1 (RFC9112)
//	HTTP/2 (RFC9113), delegated to [golang.org/x/net/http2]
//
// the transport never retries, redirects or caches. connection setup (DNS,
// proxies, TLS) belongs to the [Dialer].

package transport
