// Package lifecycle provides connect retries and command lifecycle
// management for influxship tools.
//
// # Backoff
//
// Backoff is exponential with ±20% jitter. Retry drives a function with it:
//
//	b := lifecycle.NewBackoff(lifecycle.DefaultBackoffInitial, lifecycle.DefaultBackoffMax)
//	err := lifecycle.Retry(ctx, 5, b, func(attempt int) error {
//	    w, err = measuring.New(ctx, cfg)
//	    return err
//	})
//
// Wrap an error with Permanent to stop retrying early.
//
// # Manager
//
// Manager runs the workers of a command and bounds shutdown:
//
//	m := lifecycle.NewManager(logger)
//	ctx, err := m.Start(ctx)
//	m.Go(func() { run(ctx) })
//	...
//	err = m.Stop(lifecycle.ShutdownTimeout)
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//   - Crashed -> Starting
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package lifecycle
