//go:build !unix

package dialer

import "syscall"

// buffer sizes are only applied on unix platforms
func (c *SocketConfig) control() func(network, address string, rc syscall.RawConn) error {
	return nil
}
