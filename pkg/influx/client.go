package influx

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzip"
)

const (
	jsonContentType = "application/json"

	// maxErrorBody caps the response body kept on a status error.
	maxErrorBody = 512
)

// Client sends requests over one Stream. It is not safe for concurrent use.
type Client struct {
	stream Stream
	closer io.Closer
	ep     *ServerEndpoint
	rd     *bufio.Reader

	header  []byte
	scratch [][]byte

	outstanding int
	timeout     time.Duration

	gzip    bool
	gzLevel int
	gzBuf   bytes.Buffer
	gzw     *gzip.Writer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithGzip compresses request bodies at the given level and sends
// Content-Encoding: gzip.
func WithGzip(level int) ClientOption {
	return func(c *Client) {
		c.gzip = true
		c.gzLevel = level
	}
}

// WithResponseTimeout bounds the time spent reading responses of one call.
// Zero, the default, blocks until the server answers.
func WithResponseTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient returns a client that talks to ep over stream.
func NewClient(stream Stream, ep *ServerEndpoint, opts ...ClientOption) *Client {
	c := &Client{
		stream:  stream,
		ep:      ep,
		rd:      bufio.NewReader(stream),
		header:  make([]byte, initialHeaderSize),
		scratch: make([][]byte, 0, 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open dials ep and returns a client owning the connection.
func Open(ctx context.Context, ep *ServerEndpoint, dial DialOptions, opts ...ClientOption) (*Client, error) {
	conn, err := Dial(ctx, ep, dial)
	if err != nil {
		return nil, err
	}
	c := NewClient(conn, ep, opts...)
	c.closer = conn
	return c, nil
}

// Endpoint returns the endpoint the client was built for.
func (c *Client) Endpoint() *ServerEndpoint { return c.ep }

// Outstanding returns the number of responses not yet read from the stream.
func (c *Client) Outstanding() int { return c.outstanding }

// HeaderCap returns the current capacity of the header buffer.
func (c *Client) HeaderCap() int { return cap(c.header) }

// Close closes the underlying connection when the client owns it.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// Do sends req. When await is false it returns once the bytes are written
// and the response is left for a later awaiting call to drain. When await
// is true it parses the response, appending the body to resp if non-nil.
// A non-2xx status yields an *Error with CodeStatus.
func (c *Client) Do(req Request, resp *[]byte, await bool) error {
	body := req.Body
	compressed := c.gzip && len(body) > 0
	if compressed {
		var err error
		if body, err = c.compress(body); err != nil {
			return &Error{Code: CodeWrite, Op: "gzip", Err: err}
		}
	}

	head := c.formatHeader(req, len(body), compressed)
	if _, err := writeFull(c.stream, [][]byte{head, body}, c.scratch); err != nil {
		return err
	}
	c.outstanding++
	if !await {
		return nil
	}
	return c.await(resp)
}

func (c *Client) await(resp *[]byte) error {
	if c.timeout > 0 {
		_ = c.stream.SetReadDeadline(time.Now().Add(c.timeout))
		defer c.stream.SetReadDeadline(time.Time{})
	}

	for c.outstanding > 1 {
		if _, err := readResponse(c.rd, nil); err != nil {
			c.outstanding = 0
			return fmt.Errorf("drain pending response: %w", err)
		}
		c.outstanding--
	}

	var body []byte
	dst := resp
	if dst == nil {
		dst = &body
	}
	status, err := readResponse(c.rd, dst)
	c.outstanding = 0
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		b := *dst
		if len(b) > maxErrorBody {
			b = b[:maxErrorBody]
		}
		return &Error{Code: CodeStatus, Op: "response", StatusCode: status, Body: append([]byte(nil), b...)}
	}
	return nil
}

func (c *Client) compress(body []byte) ([]byte, error) {
	c.gzBuf.Reset()
	if c.gzw == nil {
		w, err := gzip.NewWriterLevel(&c.gzBuf, c.gzLevel)
		if err != nil {
			return nil, err
		}
		c.gzw = w
	} else {
		c.gzw.Reset(&c.gzBuf)
	}
	if _, err := c.gzw.Write(body); err != nil {
		return nil, err
	}
	if err := c.gzw.Close(); err != nil {
		return nil, err
	}
	return c.gzBuf.Bytes(), nil
}

// Write posts line protocol to the write endpoint, waiting for the response
// only when the endpoint asks for it.
func (c *Client) Write(lines []byte) error {
	return c.write(lines, c.ep.AwaitResponse())
}

// WriteAndWait posts line protocol and always waits for the response.
func (c *Client) WriteAndWait(lines []byte) error {
	return c.write(lines, true)
}

func (c *Client) write(lines []byte, await bool) error {
	return c.Do(Request{
		Method: http.MethodPost,
		URI:    "write",
		Body:   lines,
	}, nil, await)
}

type queryRequest struct {
	Query string `json:"query"`
	Type  string `json:"type"`
}

// Query runs a flux query and returns the raw response body (annotated CSV).
func (c *Client) Query(flux string) ([]byte, error) {
	body, err := json.Marshal(queryRequest{Query: flux, Type: "flux"})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	var resp []byte
	err = c.Do(Request{
		Method:      http.MethodPost,
		URI:         "query",
		ContentType: jsonContentType,
		Body:        body,
	}, &resp, true)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
