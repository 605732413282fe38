//go:build !linux

package influx

import "net"

// Writev writes only the first non-empty buffer. The write loop treats the
// result as a partial write and continues with the rest.
func (c *Conn) Writev(bufs [][]byte) (int, error) {
	if c.closed {
		return -1, net.ErrClosed
	}
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		n, err := c.tcp.Write(b)
		if err != nil {
			return -1, err
		}
		return n, nil
	}
	return 0, nil
}
