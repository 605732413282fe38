package influx

import (
	"context"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"
)

// Stream is the byte stream a Client talks over. *Conn implements it; tests
// substitute in-memory fakes.
type Stream interface {
	io.Reader

	// Writev performs a single scatter-gather write of bufs and returns the
	// number of bytes accepted, which may be less than their total.
	Writev(bufs [][]byte) (int, error)

	SetReadDeadline(t time.Time) error
}

// DialOptions tune Dial.
type DialOptions struct {
	// Timeout bounds connection establishment. Zero means no bound beyond ctx.
	Timeout time.Duration
}

// Conn is a TCP connection owned by exactly one Client.
type Conn struct {
	tcp    *net.TCPConn
	raw    syscall.RawConn
	closed bool
}

// Dial connects to the resolved address of ep. It does not retry.
func Dial(ctx context.Context, ep *ServerEndpoint, opts DialOptions) (*Conn, error) {
	d := net.Dialer{Timeout: opts.Timeout}
	c, err := d.DialContext(ctx, ep.Network(), ep.Addr().String())
	if err != nil {
		return nil, &Error{Code: CodeConnect, Op: "dial " + ep.HostHeader(), Err: err}
	}
	tcp, ok := c.(*net.TCPConn)
	if !ok {
		c.Close()
		return nil, &Error{Code: CodeConnect, Op: "dial " + ep.HostHeader(), Err: fmt.Errorf("unexpected connection type %T", c)}
	}
	raw, err := tcp.SyscallConn()
	if err != nil {
		tcp.Close()
		return nil, &Error{Code: CodeConnect, Op: "dial " + ep.HostHeader(), Err: err}
	}
	return &Conn{tcp: tcp, raw: raw}, nil
}

func (c *Conn) Read(p []byte) (int, error) {
	if c.closed {
		return 0, net.ErrClosed
	}
	return c.tcp.Read(p)
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.tcp.SetReadDeadline(t)
}

// LocalAddr returns the local address of the socket.
func (c *Conn) LocalAddr() net.Addr { return c.tcp.LocalAddr() }

// Close shuts down both directions and releases the socket. Closing twice
// returns ErrClosed.
func (c *Conn) Close() error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	_ = c.tcp.CloseRead()
	_ = c.tcp.CloseWrite()
	return c.tcp.Close()
}
