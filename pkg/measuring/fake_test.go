package measuring

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/influxship/pkg/influx"
)

type fakeUploader struct {
	mu      sync.Mutex
	writes  []string
	awaited []bool
	errs    []error
	closed  bool
	query   []byte
	flux    string
}

func (u *fakeUploader) send(lines []byte, await bool) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.errs) > 0 {
		err := u.errs[0]
		u.errs = u.errs[1:]
		if err != nil {
			return err
		}
	}
	u.writes = append(u.writes, string(lines))
	u.awaited = append(u.awaited, await)
	return nil
}

func (u *fakeUploader) Write(lines []byte) error        { return u.send(lines, false) }
func (u *fakeUploader) WriteAndWait(lines []byte) error { return u.send(lines, true) }

func (u *fakeUploader) Query(flux string) ([]byte, error) {
	u.flux = flux
	return u.query, nil
}

func (u *fakeUploader) Close() error {
	u.closed = true
	return nil
}

func (u *fakeUploader) sent() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.writes...)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type harness struct {
	w      *Writer
	clock  *fakeClock
	dials  []*fakeUploader
	events *recordingHandler
}

func (h *harness) up() *fakeUploader { return h.dials[len(h.dials)-1] }

type recordingHandler struct {
	BaseEventHandler
	flushes []FlushEvent
	errors  []FlushErrorEvent
}

func (r *recordingHandler) OnFlush(e FlushEvent)           { r.flushes = append(r.flushes, e) }
func (r *recordingHandler) OnFlushError(e FlushErrorEvent) { r.errors = append(r.errors, e) }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Org = "lab"
	cfg.Bucket = "telemetry"
	cfg.Token = "secret"
	cfg.HostInfo = HostInfo{Topic: "/chatter", NodeName: "talker", Namespace: "/"}
	return cfg
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{
		clock:  &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		events: &recordingHandler{},
	}
	dialer := func(context.Context, *influx.ServerEndpoint) (Uploader, error) {
		u := &fakeUploader{}
		h.dials = append(h.dials, u)
		return u, nil
	}
	w, err := New(context.Background(), cfg,
		WithDialer(dialer),
		WithClock(h.clock.now),
		WithEventHandler(h.events),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.w = w
	return h
}

type failingResolver struct{}

func (failingResolver) LookupIPAddr(context.Context, string) ([]net.IPAddr, error) {
	return nil, &net.DNSError{Err: "no such host", Name: "influx.invalid", IsNotFound: true}
}
