package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/influxship/internal/config"
	"github.com/bft-labs/influxship/pkg/influx"
	"github.com/bft-labs/influxship/pkg/lifecycle"
	"github.com/bft-labs/influxship/pkg/measuring"
)

func TestActivation(t *testing.T) {
	base := time.Unix(100, 0)
	period := 10 * time.Millisecond

	tests := []struct {
		name       string
		now        time.Time
		wantJitter int64
		wantNext   time.Time
	}{
		{"on time", base, 0, base.Add(period)},
		{"late", base.Add(2 * time.Millisecond), int64(2 * time.Millisecond), base.Add(period)},
		{"early", base.Add(-time.Millisecond), -int64(time.Millisecond), base.Add(period)},
		{"missed two slots", base.Add(25 * time.Millisecond), int64(25 * time.Millisecond), base.Add(30 * time.Millisecond)},
		{"lands on next slot", base.Add(period), int64(period), base.Add(2 * period)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jitter, next := activation(base, tt.now, period)
			assert.Equal(t, tt.wantJitter, jitter)
			assert.True(t, tt.wantNext.Equal(next), "next = %v, want %v", next, tt.wantNext)
		})
	}
}

func TestConnectError(t *testing.T) {
	resolveErr := &influx.Error{Code: influx.CodeResolve, Op: "resolve"}

	tests := []struct {
		name          string
		err           error
		exitOnResolve bool
		permanent     bool
	}{
		{"invalid config", measuring.ErrInvalidConfig, false, true},
		{"resolve retried", resolveErr, false, false},
		{"resolve exits", resolveErr, true, true},
		{"connect retried", &influx.Error{Code: influx.CodeConnect, Op: "dial"}, true, false},
		{"cancelled", context.Canceled, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.ExitOnResolveFailure = tt.exitOnResolve

			calls := 0
			b := lifecycle.NewBackoff(time.Millisecond, time.Millisecond)
			err := lifecycle.Retry(context.Background(), 3, b, func(int) error {
				calls++
				return connectError(tt.err, cfg)
			})
			assert.ErrorIs(t, err, tt.err)
			if tt.permanent {
				assert.Equal(t, 1, calls)
			} else {
				assert.Equal(t, 3, calls)
			}
		})
	}
}

type stubServer struct {
	mu     sync.Mutex
	writes []string
}

func (s *stubServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	switch r.URL.Path {
	case "/api/v2/write":
		s.mu.Lock()
		s.writes = append(s.writes, string(body))
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	case "/api/v2/query":
		w.Header().Set("Content-Type", "text/csv")
		io.WriteString(w, ",result,table\r\n")
	default:
		http.NotFound(w, r)
	}
}

func runCLI(t *testing.T, args ...string) (string, *stubServer) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	stub := &stubServer{}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	addr := srv.Listener.Addr().(*net.TCPAddr)

	c := &cli{cfg: config.DefaultConfig()}
	root := newRootCommand(c)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append(args,
		"--host", addr.IP.String(),
		"--port", strconv.Itoa(addr.Port),
		"--org", "lab",
		"--bucket", "telemetry",
		"--log-level", "error",
	))
	require.NoError(t, root.Execute())
	return out.String(), stub
}

func TestQueryCommand(t *testing.T) {
	out, _ := runCLI(t, "query", `buckets()`)
	assert.Equal(t, ",result,table\r\n", out)
}

func TestJitterCommand(t *testing.T) {
	_, stub := runCLI(t, "jitter", "--count", "3", "--period", "5ms", "--timer", "tick")

	stub.mu.Lock()
	defer stub.mu.Unlock()
	require.NotEmpty(t, stub.writes)

	var lines []string
	for _, body := range stub.writes {
		lines = append(lines, strings.Split(body, "\n")...)
	}
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "tick,timer=/influxship activation_jitter="), line)
	}
}

func TestRootCommand_RequiresOrg(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c := &cli{cfg: config.DefaultConfig()}
	root := newRootCommand(c)
	root.SetArgs([]string{"query", "buckets()", "--log-level", "error"})
	assert.Error(t, root.Execute())
}
