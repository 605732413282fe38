package measuring

import (
	"errors"
	"testing"

	"github.com/bft-labs/influxship/pkg/lineproto"
)

func TestNoop(t *testing.T) {
	var r Recorder = &Noop{}

	first := r.RegisterMeasurement("latency", nil)
	second := r.RegisterMeasurement("latency", nil)
	if first != 0 || second != 1 {
		t.Errorf("keys = %v, %v, want 0, 1", first, second)
	}

	r.UseTimestamp(1)
	if err := r.RecordLatency(first, MessageVars{}, 0, 0); err != nil {
		t.Errorf("RecordLatency() = %v", err)
	}
	if err := r.RecordArrival(second, MessageVars{}, 0); err != nil {
		t.Errorf("RecordArrival() = %v", err)
	}
	if err := r.RecordActivationJitter(Key(9), 1); !errors.Is(err, ErrUnknownMeasurement) {
		t.Errorf("RecordActivationJitter(unknown) = %v, want ErrUnknownMeasurement", err)
	}
	if err := r.Record(first, nil, []lineproto.Field{lineproto.IntField("a", 1)}, 1); err != nil {
		t.Errorf("Record() = %v", err)
	}
	if err := r.FlushAndWait(); err != nil {
		t.Errorf("FlushAndWait() = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestRegistry(t *testing.T) {
	var r Registry
	cols := []string{"a", "b"}
	k := r.Register("m", cols)
	cols[0] = "changed"

	m, ok := r.Lookup(k)
	if !ok || m.Name != "m" || m.Columns[0] != "a" {
		t.Errorf("Lookup(%d) = %+v, %v", k, m, ok)
	}
	if _, ok := r.Lookup(k + 1); ok {
		t.Error("Lookup(unregistered) ok = true")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %v, want 1", r.Len())
	}
}
