package kwest

import (
	"github.com/frankli0324/go-kwest/internal/dialer"
)

// Dialer opens the connection of one exchange; see package dialer for the
// full contract.
type Dialer = dialer.Dialer
type CoreDialer = dialer.CoreDialer

type ProxyConfig = dialer.ProxyConfig
type ResolveConfig = dialer.ResolveConfig
type SocketConfig = dialer.SocketConfig

// NewDialer returns a copy of the default dialer, ready to be tuned and
// passed to WithDialer.
func NewDialer() *CoreDialer {
	return dialer.Default.Clone()
}
