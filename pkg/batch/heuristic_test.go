package batch

import (
	"testing"
	"time"
)

type size int

func (s size) Size() int { return int(s) }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestUploadHeuristic_ShouldUpload(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		elapsed time.Duration
		pending int
		want    bool
	}{
		{"bootstrap empty no time", Bootstrap, 0, 0, false},
		{"bootstrap one byte", Bootstrap, 0, 1, true},
		{"bootstrap any time", Bootstrap, time.Nanosecond, 0, true},
		{"steady below both", Steady, 14 * time.Second, 63999, false},
		{"steady size equal is not over", Steady, 0, 64000, false},
		{"steady size over", Steady, 0, 64001, true},
		{"steady interval equal is not over", Steady, 15 * time.Second, 0, false},
		{"steady interval over", Steady, 15*time.Second + time.Millisecond, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newClock()
			h := NewUploadHeuristic(tt.th, WithClock(clock.now))
			clock.advance(tt.elapsed)
			if got := h.ShouldUpload(size(tt.pending)); got != tt.want {
				t.Errorf("ShouldUpload() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUploadHeuristic_RecordFlush(t *testing.T) {
	clock := newClock()
	h := NewUploadHeuristic(Steady, WithClock(clock.now))

	clock.advance(20 * time.Second)
	if !h.ShouldUpload(size(0)) {
		t.Fatal("ShouldUpload() = false after interval, want true")
	}

	h.RecordFlush()
	if h.ShouldUpload(size(0)) {
		t.Error("ShouldUpload() = true right after flush, want false")
	}
	if got := h.SinceFlush(); got != 0 {
		t.Errorf("SinceFlush() = %v, want 0", got)
	}
}

func TestUploadHeuristic_UpdateThresholds(t *testing.T) {
	h := NewUploadHeuristic(Steady)

	n := 10
	h.UpdateThresholds(&n, nil)
	if got := h.Thresholds(); got.Size != 10 || got.Interval != Steady.Interval {
		t.Errorf("Thresholds() = %+v, want size 10 and interval unchanged", got)
	}

	d := time.Minute
	h.UpdateThresholds(nil, &d)
	if got := h.Thresholds(); got.Size != 10 || got.Interval != time.Minute {
		t.Errorf("Thresholds() = %+v, want {10 1m}", got)
	}
}
