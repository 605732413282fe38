package influx

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"strconv"
)

// maxChunkSize bounds a single chunk so a corrupt size line cannot trigger
// a huge allocation.
const maxChunkSize = 1 << 30

type response struct {
	status  int
	chunked bool
	length  int
}

func framingErr(code Code, op string, err error) error {
	return &Error{Code: code, Op: op, Err: err}
}

// readErr converts an I/O failure while reading a response.
func readErr(op string, err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Code: CodeTimeout, Op: op, Err: err}
	}
	if errors.Is(err, net.ErrClosed) {
		return &Error{Code: CodeClosed, Op: op, Err: err}
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return &Error{Code: CodePrematureEOF, Op: op, Err: err}
}

// readLine returns the next line including its '\n'. The slice is only
// valid until the next read on r.
func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		long := append([]byte(nil), line...)
		for err == bufio.ErrBufferFull {
			line, err = r.ReadSlice('\n')
			long = append(long, line...)
		}
		line = long
	}
	return line, err
}

// expect consumes lit from r.
func expect(r *bufio.Reader, lit string, op string) error {
	for i := 0; i < len(lit); i++ {
		b, err := r.ReadByte()
		if err != nil {
			return readErr(op, err)
		}
		if b != lit[i] {
			return framingErr(CodeUnexpectedByte, op, errors.New("expected "+strconv.Quote(lit)+", got "+strconv.Quote(string(b))))
		}
	}
	return nil
}

// readHead parses the status line and header block.
func readHead(r *bufio.Reader) (response, error) {
	var resp response

	line, err := readLine(r)
	if err != nil {
		return resp, readErr("status line", err)
	}
	sp := bytes.IndexByte(line, ' ')
	if sp < 0 {
		return resp, framingErr(CodeMalformed, "status line", errors.New("no status code"))
	}
	digits := line[sp+1:]
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	if end == 0 {
		return resp, framingErr(CodeMalformed, "status line", errors.New("no status code"))
	}
	resp.status, _ = strconv.Atoi(string(digits[:end]))

	for {
		line, err := readLine(r)
		if err != nil {
			if len(line) == 0 && err == io.EOF {
				return resp, framingErr(CodeHeaderTruncated, "header", io.ErrUnexpectedEOF)
			}
			return resp, readErr("header", err)
		}
		if line[0] == '\r' {
			if len(line) != 2 {
				return resp, framingErr(CodeUnexpectedByte, "header", errors.New("expected empty line"))
			}
			return resp, nil
		}
		if err := parseHeaderLine(&resp, line); err != nil {
			return resp, err
		}
	}
}

func parseHeaderLine(resp *response, line []byte) error {
	colon := bytes.IndexByte(line, ':')
	if colon < 0 {
		return framingErr(CodeMalformed, "header", errors.New("missing colon in "+strconv.Quote(string(line))))
	}
	name := bytes.TrimSpace(line[:colon])
	value := bytes.TrimSpace(line[colon+1:])
	switch {
	case bytes.EqualFold(name, []byte("Content-Length")):
		end := 0
		for end < len(value) && value[end] >= '0' && value[end] <= '9' {
			end++
		}
		n, err := strconv.Atoi(string(value[:end]))
		if err != nil || n < 0 {
			return framingErr(CodeMalformed, "content-length", errors.New("invalid value "+strconv.Quote(string(value))))
		}
		resp.length = n
	case bytes.EqualFold(name, []byte("Transfer-Encoding")):
		if len(value) >= 7 && bytes.EqualFold(value[:7], []byte("chunked")) {
			resp.chunked = true
		}
	}
	return nil
}

// readBody reads n body bytes into dst, or discards them when dst is nil.
func readBody(r *bufio.Reader, n int, dst *[]byte) error {
	if dst == nil {
		if _, err := r.Discard(n); err != nil {
			return readErr("body", err)
		}
		return nil
	}
	start := len(*dst)
	buf := append(*dst, make([]byte, n)...)
	if _, err := io.ReadFull(r, buf[start:]); err != nil {
		return readErr("body", err)
	}
	*dst = buf
	return nil
}

func readChunkSize(r *bufio.Reader) (int, error) {
	size, digits := 0, 0
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, readErr("chunk size", err)
		}
		var v int
		switch {
		case b >= '0' && b <= '9':
			v = int(b - '0')
		case b >= 'a' && b <= 'f':
			v = int(b-'a') + 10
		case b >= 'A' && b <= 'F':
			v = int(b-'A') + 10
		case b == '\r' && digits > 0:
			if err := expect(r, "\n", "chunk size"); err != nil {
				return 0, err
			}
			return size, nil
		default:
			return 0, framingErr(CodeBadChunkSize, "chunk size", errors.New("unexpected "+strconv.Quote(string(b))))
		}
		size = size<<4 | v
		digits++
		if size > maxChunkSize {
			return 0, framingErr(CodeBadChunkSize, "chunk size", errors.New("chunk too large"))
		}
	}
}

func readChunked(r *bufio.Reader, dst *[]byte) error {
	for {
		size, err := readChunkSize(r)
		if err != nil {
			return err
		}
		if size == 0 {
			return expect(r, "\r\n", "last chunk")
		}
		if err := readBody(r, size, dst); err != nil {
			return err
		}
		if err := expect(r, "\r\n", "chunk"); err != nil {
			return err
		}
	}
}

// readResponse parses one response from r, appending its body to dst when
// dst is non-nil. Bytes after the end of the response stay in r.
func readResponse(r *bufio.Reader, dst *[]byte) (int, error) {
	resp, err := readHead(r)
	if err != nil {
		return resp.status, err
	}
	if resp.chunked {
		err = readChunked(r, dst)
	} else {
		err = readBody(r, resp.length, dst)
	}
	return resp.status, err
}
