//go:build unix

package dialer

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// control returns the net.Dialer Control hook applying c, or nil when
// there is nothing to apply.
func (c *SocketConfig) control() func(network, address string, rc syscall.RawConn) error {
	if c == nil || (c.SendBuffer <= 0 && c.RecvBuffer <= 0) {
		return nil
	}
	return func(network, address string, rc syscall.RawConn) error {
		var serr error
		err := rc.Control(func(fd uintptr) {
			if c.SendBuffer > 0 {
				if serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, c.SendBuffer); serr != nil {
					return
				}
			}
			if c.RecvBuffer > 0 {
				serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, c.RecvBuffer)
			}
		})
		if err != nil {
			return err
		}
		return serr
	}
}
