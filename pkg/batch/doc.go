// Package batch decides when accumulated measurements should be uploaded.
//
// An UploadHeuristic compares the size of the pending payload and the time
// since the last flush against two thresholds. A Policy layers the startup
// behavior on top: the first payload is sent as soon as anything is pending
// (Bootstrap thresholds, both zero), after which the heuristic switches once
// and for all to the Steady thresholds.
//
// # Usage
//
//	policy := batch.NewPolicy(batch.Steady)
//
//	for ev := range events {
//	    builder.AppendLine(...)
//	    if policy.ShouldUpload(builder) {
//	        client.Write(builder.Bytes())
//	        builder.Clear()
//	        policy.AfterFlush()
//	    }
//	}
//
// # Thresholds
//
// - Size: pending bytes above which an upload is due (Steady: 64000)
// - Interval: time since the last flush after which an upload is due (Steady: 15s)
//
// Both comparisons are strict, so a zero threshold fires as soon as any
// byte is pending or any time has passed.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package batch
