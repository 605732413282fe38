package measuring

import "github.com/bft-labs/influxship/pkg/lineproto"

// Recorder is the interface measurement producers program against.
// *Writer ships to the database; *Noop discards.
type Recorder interface {
	RegisterMeasurement(name string, columns []string) Key
	UseTimestamp(ts int64)
	Record(key Key, tags []lineproto.Tag, fields []lineproto.Field, ts int64) error
	RecordLatency(key Key, msg MessageVars, publisher lineproto.HexID, arrival int64) error
	RecordArrival(key Key, msg MessageVars, publisher lineproto.HexID) error
	RecordActivationJitter(key Key, jitter int64) error
	FlushAndWait() error
	Close() error
}

var (
	_ Recorder = (*Writer)(nil)
	_ Recorder = (*Noop)(nil)
)

// Noop hands out keys and drops every record. Use it when the database is
// unreachable and measurements are optional.
type Noop struct {
	registry Registry
}

func (n *Noop) RegisterMeasurement(name string, columns []string) Key {
	return n.registry.Register(name, columns)
}

func (n *Noop) UseTimestamp(int64) {}

func (n *Noop) Record(key Key, _ []lineproto.Tag, _ []lineproto.Field, _ int64) error {
	return n.check(key)
}

func (n *Noop) RecordLatency(key Key, _ MessageVars, _ lineproto.HexID, _ int64) error {
	return n.check(key)
}

func (n *Noop) RecordArrival(key Key, _ MessageVars, _ lineproto.HexID) error {
	return n.check(key)
}

func (n *Noop) RecordActivationJitter(key Key, _ int64) error {
	return n.check(key)
}

func (n *Noop) FlushAndWait() error { return nil }

func (n *Noop) Close() error { return nil }

func (n *Noop) check(key Key) error {
	if _, ok := n.registry.Lookup(key); !ok {
		return ErrUnknownMeasurement
	}
	return nil
}
