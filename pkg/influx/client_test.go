package influx

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noContent = "HTTP/1.1 204 No Content\r\n\r\n"

func TestClient_WriteFireAndForget(t *testing.T) {
	s := newFakeStream(noContent + noContent + noContent)
	c := NewClient(s, testEndpoint(false))

	require.NoError(t, c.Write([]byte("m f=1i 1")))
	require.NoError(t, c.Write([]byte("m f=2i 2")))
	assert.Equal(t, 2, c.Outstanding())

	require.NoError(t, c.WriteAndWait([]byte("m f=3i 3")))
	assert.Equal(t, 0, c.Outstanding())

	written := s.written.String()
	assert.Equal(t, 3, strings.Count(written, "POST /api/v2/write?org=lab&bucket=telemetry HTTP/1.1\r\n"))
	assert.True(t, strings.HasSuffix(written, "Content-Length: 8\r\n\r\nm f=3i 3"))
	assert.NotContains(t, written, "Content-Type:", "writes carry no content type")
}

func TestClient_WriteAwaitsWhenEndpointAsks(t *testing.T) {
	s := newFakeStream(noContent)
	c := NewClient(s, testEndpoint(true))

	require.NoError(t, c.Write([]byte("m f=1i 1")))
	assert.Equal(t, 0, c.Outstanding())
}

func TestClient_StatusError(t *testing.T) {
	s := newFakeStream("HTTP/1.1 400 Bad Request\r\nContent-Length: 17\r\n\r\nunable to parse x")
	c := NewClient(s, testEndpoint(true))

	err := c.Write([]byte("bad line"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)
	assert.Equal(t, -12, ReturnCode(err))

	var ie *Error
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 400, ie.StatusCode)
	assert.Equal(t, "unable to parse x", string(ie.Body))
}

func TestClient_DrainErrorResetsOutstanding(t *testing.T) {
	s := newFakeStream("garbage")
	c := NewClient(s, testEndpoint(false))

	require.NoError(t, c.Write([]byte("a")))
	err := c.WriteAndWait([]byte("b"))
	assert.ErrorIs(t, err, ErrFraming)
	assert.Equal(t, 0, c.Outstanding())
}

func TestClient_WriteFailureNotCountedAsOutstanding(t *testing.T) {
	s := newFakeStream("")
	s.writeErr = io.ErrClosedPipe
	c := NewClient(s, testEndpoint(false))

	err := c.Write([]byte("a"))
	assert.ErrorIs(t, err, ErrWrite)
	assert.Equal(t, 0, c.Outstanding())
}

func TestClient_Query(t *testing.T) {
	csv := ",result,table,_value\r\n,_result,0,42\r\n"
	resp := "HTTP/1.1 200 OK\r\nContent-Type: text/csv\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"25\r\n" + csv + "\r\n0\r\n\r\n"
	s := newFakeStream(resp)
	c := NewClient(s, testEndpoint(false))

	body, err := c.Query(`from(bucket: "telemetry") |> range(start: -1h)`)
	require.NoError(t, err)
	assert.Equal(t, csv, string(body))

	written := s.written.String()
	assert.True(t, strings.HasPrefix(written, "POST /api/v2/query?org=lab&bucket=telemetry HTTP/1.1\r\n"))
	assert.Contains(t, written, "Content-Type: application/json\r\n")
	assert.True(t, strings.HasSuffix(written,
		`{"query":"from(bucket: \"telemetry\") |> range(start: -1h)","type":"flux"}`), written)
}

func TestClient_Gzip(t *testing.T) {
	s := newFakeStream(noContent)
	c := NewClient(s, testEndpoint(true), WithGzip(gzip.BestSpeed))

	lines := []byte(strings.Repeat("cpu,host=a usage=0.5 1\n", 50))
	require.NoError(t, c.Write(lines))

	written := s.written.Bytes()
	assert.Contains(t, string(written), "Content-Encoding: gzip\r\n")

	idx := bytes.Index(written, []byte("\r\n\r\n"))
	require.Positive(t, idx)
	zr, err := gzip.NewReader(bytes.NewReader(written[idx+4:]))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, lines, plain)
}

func TestClient_ResponseTimeout(t *testing.T) {
	s := newFakeStream("")
	s.responses = timeoutReader{}
	c := NewClient(s, testEndpoint(true), WithResponseTimeout(50*time.Millisecond))

	err := c.Write([]byte("a"))
	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, s.deadline.IsZero(), "deadline must be cleared after the call")
}

func TestClient_CloseWithoutOwnedConn(t *testing.T) {
	c := NewClient(newFakeStream(""), testEndpoint(false))
	assert.NoError(t, c.Close())
}
