package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/influxship/internal/config"
	"github.com/bft-labs/influxship/pkg/batch"
)

type recordingSetter struct {
	mu  sync.Mutex
	got []batch.Thresholds
}

func (r *recordingSetter) SetSteadyThresholds(t batch.Thresholds) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, t)
}

func (r *recordingSetter) calls() []batch.Thresholds {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]batch.Thresholds(nil), r.got...)
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestReload_AppliesChangedThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "steady_size_bytes = 1000\nsteady_interval = \"2s\"\n")

	setter := &recordingSetter{}
	w := New(path, config.DefaultConfig(), nil, setter)

	require.NoError(t, w.Reload())
	require.NoError(t, w.Reload())

	assert.Equal(t, []batch.Thresholds{{Size: 1000, Interval: 2 * time.Second}}, setter.calls())
}

func TestReload_UnchangedFileIsSilent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "org = \"lab\"\n")

	setter := &recordingSetter{}
	w := New(path, config.DefaultConfig(), nil, setter)

	require.NoError(t, w.Reload())
	assert.Empty(t, setter.calls())
}

func TestReload_ChangedFlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "steady_size_bytes = 1000\nsteady_interval = \"2s\"\n")

	base := config.DefaultConfig()
	base.SteadyInterval = time.Minute
	setter := &recordingSetter{}
	w := New(path, base, map[string]bool{"steady-interval": true}, setter)

	require.NoError(t, w.Reload())
	assert.Equal(t, []batch.Thresholds{{Size: 1000, Interval: time.Minute}}, setter.calls())
}

func TestReload_InvalidFileKeepsThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "steady_interval = \"often\"\n")

	setter := &recordingSetter{}
	w := New(path, config.DefaultConfig(), nil, setter)

	assert.Error(t, w.Reload())
	assert.Empty(t, setter.calls())
}

func TestWatcher_PicksUpFileWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeConfig(t, path, "org = \"lab\"\n")

	setter := &recordingSetter{}
	w := New(path, config.DefaultConfig(), nil, setter, WithDebounceDelay(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Close()

	// Unrelated files in the same directory are ignored.
	writeConfig(t, filepath.Join(dir, "other.toml"), "steady_size_bytes = 5\n")

	writeConfig(t, path, "steady_size_bytes = 4096\nsteady_interval = \"3s\"\n")

	want := batch.Thresholds{Size: 4096, Interval: 3 * time.Second}
	require.Eventually(t, func() bool {
		calls := setter.calls()
		return len(calls) > 0 && calls[len(calls)-1] == want
	}, 2*time.Second, 10*time.Millisecond)

	for _, c := range setter.calls() {
		assert.NotEqual(t, 5, c.Size)
	}
}

func TestWatcher_StartFailsOnMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.toml")
	w := New(path, config.DefaultConfig(), nil, &recordingSetter{})

	assert.Error(t, w.Start(context.Background()))
	assert.NoError(t, w.Close())
}
