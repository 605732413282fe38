// Package lineproto builds InfluxDB line protocol payloads.
//
// A Builder accumulates any number of lines of the form
//
//	measurement,tag1=v1,tag2=v2 field1=v1,field2=v2 timestamp
//
// into a single reusable buffer. Every operation is gated by the
// builder's State, so the buffer always holds a valid prefix of line
// protocol: calling an operation that is illegal in the current state
// returns an error matching ErrProtocolState, and a name, key or value
// that line protocol cannot represent (empty names and keys, empty tag
// values, NaN and infinite floats) returns an error matching
// ErrInvalidValue. Either way the buffer is left as it was.
//
// # Usage
//
//	b := lineproto.NewBuilder()
//	b.BeginMeasurement("lat")
//	_ = b.AddHexTag("pub", lineproto.HexID(0xAB12CD34))
//	_ = b.AddIntField("sent_time", 1000)
//	_ = b.AddIntField("recv_time", 2000)
//	_ = b.SetTimestamp(5000)
//	// b.Bytes() == "lat,pub=AB12CD34 sent_time=1000i,recv_time=2000i 5000"
//
// # Continuing a batch
//
// BeginMeasurement on a non-empty buffer always appends a line break and
// starts a new line, whatever state the previous line is in. This lets
// several call sites contribute lines to one batch before it is flushed,
// but it also means a caller that forgets to finish a line (or to flush)
// silently produces a truncated line followed by a new one. Callers that
// build a line in several steps should take a Checkpoint first and
// Rollback on error.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package lineproto
