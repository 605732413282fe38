package main

import (
	"context"
	"errors"

	"github.com/bft-labs/influxship/internal/config"
	"github.com/bft-labs/influxship/pkg/influx"
	"github.com/bft-labs/influxship/pkg/lifecycle"
	"github.com/bft-labs/influxship/pkg/log"
	"github.com/bft-labs/influxship/pkg/measuring"
)

// connectError decides whether a failed connect is worth retrying.
func connectError(err error, cfg config.Config) error {
	switch {
	case errors.Is(err, measuring.ErrInvalidConfig):
		return lifecycle.Permanent(err)
	case errors.Is(err, influx.ErrResolve) && cfg.ExitOnResolveFailure:
		return lifecycle.Permanent(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return lifecycle.Permanent(err)
	}
	return err
}

// connect creates a writer, retrying with backoff. attempts <= 0 retries
// until ctx is done.
func connect(ctx context.Context, cfg config.Config, attempts int, logger log.Logger, opts ...measuring.Option) (*measuring.Writer, error) {
	var w *measuring.Writer
	b := lifecycle.NewBackoff(lifecycle.DefaultBackoffInitial, lifecycle.DefaultBackoffMax)
	opts = append([]measuring.Option{measuring.WithLogger(logger)}, opts...)

	err := lifecycle.Retry(ctx, attempts, b, func(attempt int) error {
		var err error
		w, err = measuring.New(ctx, cfg.Measuring(), opts...)
		if err != nil {
			logger.Warn("connect failed",
				log.Int("attempt", attempt),
				log.Code(influx.ReturnCode(err)),
				log.Err(err),
				log.Duration("next_backoff", b.Current()))
			return connectError(err, cfg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// reconnect redials a writer whose connection broke.
func reconnect(ctx context.Context, w *measuring.Writer, attempts int, logger log.Logger) error {
	b := lifecycle.NewBackoff(lifecycle.DefaultBackoffInitial, lifecycle.DefaultBackoffMax)
	return lifecycle.Retry(ctx, attempts, b, func(attempt int) error {
		err := w.Reconnect(ctx)
		if err != nil {
			logger.Warn("reconnect failed", log.Int("attempt", attempt), log.Err(err))
			if errors.Is(err, measuring.ErrClosed) {
				return lifecycle.Permanent(err)
			}
		}
		return err
	})
}
