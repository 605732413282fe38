//go:build linux

package influx

import (
	"net"

	"golang.org/x/sys/unix"
)

// Writev issues one writev(2) on the socket. The runtime poller parks the
// goroutine while the socket buffer is full.
func (c *Conn) Writev(bufs [][]byte) (int, error) {
	if c.closed {
		return -1, net.ErrClosed
	}
	var (
		n    int
		werr error
	)
	err := c.raw.Write(func(fd uintptr) bool {
		n, werr = unix.Writev(int(fd), bufs)
		return werr != unix.EAGAIN && werr != unix.EINTR
	})
	if err != nil {
		return -1, err
	}
	if werr != nil {
		return -1, werr
	}
	return n, nil
}
