// Package watch hot-applies steady-state upload thresholds when the
// config file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/influxship/internal/config"
	"github.com/bft-labs/influxship/pkg/batch"
	"github.com/bft-labs/influxship/pkg/log"
)

// DefaultDebounceDelay is the quiet period after the last file event
// before the file is reloaded.
const DefaultDebounceDelay = 100 * time.Millisecond

// ThresholdSetter receives reloaded thresholds. *measuring.Writer
// implements it.
type ThresholdSetter interface {
	SetSteadyThresholds(batch.Thresholds)
}

// Option configures a ThresholdWatcher.
type Option func(*ThresholdWatcher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l log.Logger) Option {
	return func(w *ThresholdWatcher) { w.logger = log.OrNoop(l) }
}

// WithDebounceDelay overrides DefaultDebounceDelay.
func WithDebounceDelay(d time.Duration) Option {
	return func(w *ThresholdWatcher) {
		if d > 0 {
			w.debounceDelay = d
		}
	}
}

// ThresholdWatcher watches a config file and pushes its steady_size_bytes
// and steady_interval to a ThresholdSetter. Values are layered like the
// CLI does: base config, then file, then environment, skipping flags that
// were set explicitly.
type ThresholdWatcher struct {
	mu sync.Mutex

	path    string
	base    config.Config
	changed map[string]bool
	target  ThresholdSetter
	logger  log.Logger

	debounceDelay time.Duration
	debounce      *time.Timer
	last          batch.Thresholds

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher for path. base is the configuration the process
// started with, before the file was applied.
func New(path string, base config.Config, changed map[string]bool, target ThresholdSetter, opts ...Option) *ThresholdWatcher {
	w := &ThresholdWatcher{
		path:          path,
		base:          base,
		changed:       changed,
		target:        target,
		logger:        log.NewNoopLogger(),
		debounceDelay: DefaultDebounceDelay,
		last:          base.Steady(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching the file's directory. It returns once the watch is
// established.
func (w *ThresholdWatcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.watchLoop(watchCtx, fw)

	w.logger.Info("Threshold watcher started", log.String("path", w.path))
	return nil
}

// Close stops the watcher and waits for the loop to exit.
func (w *ThresholdWatcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()

	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()
	return nil
}

func (w *ThresholdWatcher) watchLoop(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fw.Close()

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Threshold watcher error", log.Err(err))
		}
	}
}

func (w *ThresholdWatcher) debounceReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		w.reload()
	})
}

// Reload reads the file now and applies the thresholds if they changed.
func (w *ThresholdWatcher) Reload() error {
	return w.reload()
}

func (w *ThresholdWatcher) reload() error {
	fc, err := config.LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("Threshold reload failed", log.String("path", w.path), log.Err(err))
		return err
	}
	cfg := w.base
	if err := config.ApplyFileConfig(&cfg, fc, w.changed); err != nil {
		w.logger.Warn("Threshold reload failed", log.String("path", w.path), log.Err(err))
		return err
	}
	if err := config.ApplyEnvConfig(&cfg, w.changed); err != nil {
		w.logger.Warn("Threshold reload failed", log.String("path", w.path), log.Err(err))
		return err
	}
	if cfg.SteadySizeBytes < 0 || cfg.SteadyInterval < 0 {
		err := fmt.Errorf("steady thresholds must not be negative")
		w.logger.Warn("Threshold reload rejected", log.Err(err))
		return err
	}

	t := cfg.Steady()
	w.mu.Lock()
	same := t == w.last
	w.last = t
	w.mu.Unlock()
	if same {
		return nil
	}

	w.target.SetSteadyThresholds(t)
	w.logger.Info("Steady thresholds reloaded",
		log.Int("size", t.Size),
		log.Duration("interval", t.Interval))
	return nil
}
