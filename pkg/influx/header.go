package influx

import (
	"net/url"
	"strconv"
)

// initialHeaderSize is the starting capacity of the request header buffer.
const initialHeaderSize = 0x100

// Request is one HTTP request against the /api/v2 namespace.
type Request struct {
	Method string
	// URI is the path below /api/v2/, for example "write".
	URI string
	// Query is appended verbatim after the org and bucket parameters and
	// must start with '&' when set.
	Query       string
	ContentType string
	Body        []byte
}

// boundedWriter copies at most len(buf) bytes but counts everything written
// to it, so the caller learns the size needed when the output was cut short.
type boundedWriter struct {
	buf []byte
	n   int
}

func (w *boundedWriter) WriteString(s string) {
	if w.n < len(w.buf) {
		copy(w.buf[w.n:], s)
	}
	w.n += len(s)
}

func (w *boundedWriter) WriteInt(v int) {
	var tmp [20]byte
	w.WriteString(string(strconv.AppendInt(tmp[:0], int64(v), 10)))
}

func writeHead(w *boundedWriter, ep *ServerEndpoint, req Request, gzip bool, contentLength int) {
	w.WriteString(req.Method)
	w.WriteString(" /api/v2/")
	w.WriteString(req.URI)
	w.WriteString("?org=")
	w.WriteString(url.QueryEscape(ep.org))
	w.WriteString("&bucket=")
	w.WriteString(url.QueryEscape(ep.bucket))
	w.WriteString(req.Query)
	w.WriteString(" HTTP/1.1\r\nHost: ")
	w.WriteString(ep.HostHeader())
	w.WriteString("\r\nAuthorization: Token ")
	w.WriteString(ep.token)
	w.WriteString("\r\n")
	if req.ContentType != "" {
		w.WriteString("Content-Type: ")
		w.WriteString(req.ContentType)
		w.WriteString("\r\n")
	}
	if gzip {
		w.WriteString("Content-Encoding: gzip\r\n")
	}
	w.WriteString("Content-Length: ")
	w.WriteInt(contentLength)
	w.WriteString("\r\n\r\n")
}

// formatHeader renders the request header into c.header, doubling the
// buffer until the header fits. The grown buffer is kept.
func (c *Client) formatHeader(req Request, contentLength int, gzip bool) []byte {
	if cap(c.header) == 0 {
		c.header = make([]byte, initialHeaderSize)
	}
	for {
		w := boundedWriter{buf: c.header[:cap(c.header)]}
		writeHead(&w, c.ep, req, gzip, contentLength)
		if w.n <= len(w.buf) {
			return w.buf[:w.n]
		}
		c.header = make([]byte, 2*len(w.buf))
	}
}
