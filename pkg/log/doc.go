// Package log is the logging abstraction shared by the influxship packages.
//
// Library packages accept a Logger and default to NoopLogger, so embedding
// applications decide where output goes. The CLI wires the zerolog adapter.
//
// # Usage
//
//	logger := log.NewZerologAdapter("debug")
//	logger.Info("flushed batch", log.Bytes("bytes", n), log.Code(0))
//
// To reuse an existing zerolog logger:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package log
