package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/influxship/internal/watch"
	"github.com/bft-labs/influxship/pkg/lifecycle"
	"github.com/bft-labs/influxship/pkg/log"
	"github.com/bft-labs/influxship/pkg/measuring"
)

type jitterOptions struct {
	period          time.Duration
	count           int
	timer           string
	connectAttempts int
}

// flushStats counts flush outcomes for the exit summary.
type flushStats struct {
	measuring.BaseEventHandler
	flushes atomic.Int64
	bytes   atomic.Int64
	failed  atomic.Int64
}

func (s *flushStats) OnFlush(e measuring.FlushEvent) {
	s.flushes.Add(1)
	s.bytes.Add(int64(e.Bytes))
}

func (s *flushStats) OnFlushError(measuring.FlushErrorEvent) {
	s.failed.Add(1)
}

// activation returns how late now is relative to the expected activation,
// and the next expected activation. Missed slots are skipped.
func activation(expected, now time.Time, period time.Duration) (int64, time.Time) {
	jitter := now.Sub(expected).Nanoseconds()
	next := expected.Add(period)
	if !next.After(now) {
		missed := now.Sub(next)/period + 1
		next = next.Add(missed * period)
	}
	return jitter, next
}

func newJitterCommand(c *cli) *cobra.Command {
	opts := jitterOptions{period: 10 * time.Millisecond, timer: "timer", connectAttempts: 5}

	cmd := &cobra.Command{
		Use:   "jitter",
		Short: "Record timer activation jitter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.period <= 0 {
				return fmt.Errorf("period must be positive")
			}
			return runJitter(cmd.Context(), c, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.period, "period", opts.period, "timer period")
	cmd.Flags().IntVar(&opts.count, "count", opts.count, "stop after this many ticks (0 runs until interrupted)")
	cmd.Flags().StringVar(&opts.timer, "timer", opts.timer, "measurement name")
	cmd.Flags().IntVar(&opts.connectAttempts, "connect-attempts", opts.connectAttempts, "connect attempts before giving up (0 retries forever)")
	return cmd
}

func runJitter(parent context.Context, c *cli, opts jitterOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := c.logger

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	go func() {
		select {
		case <-sigCh:
			logger.Info("received signal, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	stats := &flushStats{}
	w, err := connect(ctx, c.cfg, opts.connectAttempts, logger, measuring.WithEventHandler(stats))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if c.used != "" {
		tw := watch.New(c.used, c.base, c.changed, w, watch.WithLogger(logger))
		if err := tw.Start(ctx); err != nil {
			logger.Warn("threshold watcher disabled", log.Err(err))
		} else {
			defer tw.Close()
		}
	}

	key := w.RegisterMeasurement(opts.timer, []string{"timer", "activation_jitter"})

	mgr := lifecycle.NewManager(logger)
	runCtx, err := mgr.Start(ctx)
	if err != nil {
		return errors.Join(err, w.Close())
	}

	done := make(chan struct{})
	var ticks atomic.Int64
	mgr.Go(func() {
		defer close(done)
		tickLoop(runCtx, w, key, opts, logger, &ticks)
	})

	select {
	case <-ctx.Done():
	case <-done:
	}

	stopErr := mgr.Stop(lifecycle.ShutdownTimeout)
	closeErr := w.Close()

	logger.Info("jitter done",
		log.Int64("ticks", ticks.Load()),
		log.Int64("flushes", stats.flushes.Load()),
		log.Int64("bytes", stats.bytes.Load()),
		log.Int64("failed_flushes", stats.failed.Load()),
	)
	return errors.Join(stopErr, closeErr)
}

func tickLoop(ctx context.Context, w *measuring.Writer, key measuring.Key, opts jitterOptions, logger log.Logger, ticks *atomic.Int64) {
	ticker := time.NewTicker(opts.period)
	defer ticker.Stop()

	expected := time.Now().Add(opts.period)
	for opts.count <= 0 || ticks.Load() < int64(opts.count) {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			var jitter int64
			jitter, expected = activation(expected, now, opts.period)
			ticks.Add(1)

			w.UseTimestamp(now.UnixNano())
			err := w.RecordActivationJitter(key, jitter)
			if errors.Is(err, measuring.ErrDisconnected) {
				if rerr := reconnect(ctx, w, opts.connectAttempts, logger); rerr != nil {
					logger.Error("giving up on reconnect", log.Err(rerr))
					return
				}
				continue
			}
			if err != nil {
				logger.Debug("record failed", log.Err(err))
			}
		}
	}
}
