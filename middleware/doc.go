// Package middleware provides ready-made layers for a kwest client. They
// are built purely on the Middleware contract and carry no state the
// client knows about.
//
// The layer attached last sees the request first. With
//
//	c.Use(middleware.RequestID(""), middleware.Timeout(time.Second), middleware.Logging(log))
//
// a request travels Logging, Timeout, RequestID, then the transport, and
// the response travels back in reverse.
package middleware
