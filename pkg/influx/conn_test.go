package influx

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method, path, org, bucket, auth, host string
	body                                  string
}

// startServer accepts one connection, parses every request with net/http
// and answers 204. It returns the listener port and a function that waits
// for the connection to end and returns what was received.
func startServer(t *testing.T) (int, func() []capturedRequest) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		reqs []capturedRequest
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		br := bufio.NewReader(conn)
		for {
			req, err := http.ReadRequest(br)
			if err != nil {
				return
			}
			body, _ := io.ReadAll(req.Body)
			reqs = append(reqs, capturedRequest{
				method: req.Method,
				path:   req.URL.Path,
				org:    req.URL.Query().Get("org"),
				bucket: req.URL.Query().Get("bucket"),
				auth:   req.Header.Get("Authorization"),
				host:   req.Host,
				body:   string(body),
			})
			if _, err := io.WriteString(conn, "HTTP/1.1 204 No Content\r\n\r\n"); err != nil {
				return
			}
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, func() []capturedRequest {
		wg.Wait()
		return reqs
	}
}

func TestConn_Loopback(t *testing.T) {
	port, wait := startServer(t)
	ctx := context.Background()

	ep, err := Resolve(ctx, EndpointConfig{Host: "127.0.0.1", Port: port, Org: "lab", Bucket: "telemetry", Token: "secret"})
	require.NoError(t, err)
	c, err := Open(ctx, ep, DialOptions{})
	require.NoError(t, err)

	big := strings.Repeat("cpu,host=a usage=0.5 1\n", 20000)
	require.NoError(t, c.Write([]byte("m f=1i 1")))
	require.NoError(t, c.Write([]byte(big)))
	require.NoError(t, c.WriteAndWait([]byte("m f=3i 3")))
	assert.Equal(t, 0, c.Outstanding())

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Close(), ErrClosed)

	reqs := wait()
	require.Len(t, reqs, 3)
	for _, r := range reqs {
		assert.Equal(t, http.MethodPost, r.method)
		assert.Equal(t, "/api/v2/write", r.path)
		assert.Equal(t, "lab", r.org)
		assert.Equal(t, "telemetry", r.bucket)
		assert.Equal(t, "Token secret", r.auth)
		assert.Equal(t, ep.HostHeader(), r.host)
	}
	assert.Equal(t, "m f=1i 1", reqs[0].body)
	assert.Equal(t, big, reqs[1].body)
	assert.Equal(t, "m f=3i 3", reqs[2].body)
}

func TestConn_WritevAfterClose(t *testing.T) {
	port, wait := startServer(t)
	ep, err := Resolve(context.Background(), EndpointConfig{Host: "127.0.0.1", Port: port})
	require.NoError(t, err)

	conn, err := Dial(context.Background(), ep, DialOptions{})
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	wait()

	n, err := conn.Writev([][]byte{[]byte("x")})
	assert.Equal(t, -1, n)
	assert.Error(t, err)

	_, err = writeFull(conn, [][]byte{[]byte("x")}, nil)
	assert.ErrorIs(t, err, ErrWrite)
}

func TestDial_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	ep, err := Resolve(context.Background(), EndpointConfig{Host: "127.0.0.1", Port: port})
	require.NoError(t, err)

	_, err = Open(context.Background(), ep, DialOptions{})
	assert.ErrorIs(t, err, ErrConnect)
	assert.Equal(t, -21, ReturnCode(err))
}
