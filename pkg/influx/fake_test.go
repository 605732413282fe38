package influx

import (
	"bytes"
	"io"
	"strings"
	"time"
)

// fakeStream records written bytes and serves scripted responses. accept
// scripts the byte count of each Writev call; once exhausted every call
// accepts everything.
type fakeStream struct {
	accept   []int
	writeErr error
	calls    int
	written  bytes.Buffer

	responses io.Reader
	deadline  time.Time
}

func newFakeStream(responses string) *fakeStream {
	return &fakeStream{responses: strings.NewReader(responses)}
}

func (s *fakeStream) Writev(bufs [][]byte) (int, error) {
	total := 0
	for _, b := range bufs {
		total += len(b)
	}
	n := total
	if s.calls < len(s.accept) {
		n = s.accept[s.calls]
	}
	s.calls++
	if s.writeErr != nil {
		return -1, s.writeErr
	}
	if n <= 0 {
		return n, nil
	}
	n = min(n, total)
	rem := n
	for _, b := range bufs {
		take := min(rem, len(b))
		s.written.Write(b[:take])
		rem -= take
	}
	return n, nil
}

func (s *fakeStream) Read(p []byte) (int, error) {
	return s.responses.Read(p)
}

func (s *fakeStream) SetReadDeadline(t time.Time) error {
	s.deadline = t
	return nil
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

type timeoutReader struct{}

func (timeoutReader) Read([]byte) (int, error) { return 0, timeoutError{} }

func testEndpoint(await bool) *ServerEndpoint {
	return &ServerEndpoint{
		host:   "db.local",
		port:   8086,
		org:    "lab",
		bucket: "telemetry",
		token:  "secret",
		await:  await,
	}
}
