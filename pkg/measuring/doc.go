// Package measuring is the entry point for producers of measurements.
//
// A Writer owns one database connection, one line buffer and one upload
// policy. Producers register measurement names once, then record events
// by key. Lines are batched and shipped in the background of the record
// call that crosses a batching threshold; Close performs a final flush
// that waits for the server response.
//
// # Usage
//
//	cfg := measuring.DefaultConfig()
//	cfg.Org, cfg.Bucket, cfg.Token = "lab", "telemetry", token
//	cfg.HostInfo = measuring.HostInfo{Topic: "/chatter", NodeName: "talker", Namespace: "/"}
//
//	w, err := measuring.New(ctx, cfg, measuring.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	key := w.RegisterMeasurement("latency", nil)
//	w.UseTimestamp(now)
//	err = w.RecordLatency(key, msg, publisher, arrival)
//
// # Batching
//
// The first recorded line is sent on its own. Some servers drop an
// oversized first request on a fresh connection without any error, so the
// batching thresholds in Config.Steady only take effect after that first
// flush. Reconnect restarts this sequence.
//
// # Failures
//
// A transport failure keeps the buffered lines and puts the writer in a
// disconnected state: every later flush returns ErrDisconnected until
// Reconnect succeeds. A payload rejected by the server (non-2xx) is
// dropped and the writer carries on.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package measuring
