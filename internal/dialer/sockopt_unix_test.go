//go:build unix

package dialer

import (
	"context"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSocketBuffers(t *testing.T) {
	ln := echoListener(t)
	d := &CoreDialer{SocketConfig: &SocketConfig{SendBuffer: 32 << 10, RecvBuffer: 48 << 10}}

	c, err := d.Dial(context.Background(), request(t, "http://"+ln.Addr().String()+"/"))
	require.NoError(t, err)
	defer c.Close()

	rc, err := c.(syscall.Conn).SyscallConn()
	require.NoError(t, err)
	var snd, rcv int
	require.NoError(t, rc.Control(func(fd uintptr) {
		snd, _ = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF)
		rcv, _ = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF)
	}))
	// the kernel may round or double the requested sizes
	assert.GreaterOrEqual(t, snd, 32<<10)
	assert.GreaterOrEqual(t, rcv, 48<<10)
}

func TestSocketControlNil(t *testing.T) {
	var c *SocketConfig
	assert.Nil(t, c.control())
	assert.Nil(t, (&SocketConfig{KeepAlive: 1}).control())
}
