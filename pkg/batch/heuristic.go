package batch

import "time"

// Sizer reports the number of pending bytes. *lineproto.Builder satisfies it.
type Sizer interface {
	Size() int
}

// Thresholds configure an UploadHeuristic.
type Thresholds struct {
	// Size is the pending byte count above which an upload is due.
	Size int
	// Interval is the time since the last flush after which an upload is due.
	Interval time.Duration
}

var (
	// Bootstrap makes the first upload happen immediately.
	Bootstrap = Thresholds{}

	// Steady are the thresholds used once the first upload went out.
	Steady = Thresholds{Size: 64000, Interval: 15 * time.Second}
)

// UploadHeuristic decides whether pending data should be uploaded now.
// It is not safe for concurrent use.
type UploadHeuristic struct {
	thresholds Thresholds
	lastFlush  time.Time
	now        func() time.Time
}

// Option configures an UploadHeuristic.
type Option func(*UploadHeuristic)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *UploadHeuristic) {
		h.now = now
	}
}

// NewUploadHeuristic returns a heuristic whose last flush is the moment of
// construction.
func NewUploadHeuristic(t Thresholds, opts ...Option) *UploadHeuristic {
	h := &UploadHeuristic{thresholds: t, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	h.lastFlush = h.now()
	return h
}

// ShouldUpload reports whether the interval since the last flush or the
// pending size exceeds its threshold.
func (h *UploadHeuristic) ShouldUpload(s Sizer) bool {
	if h.now().Sub(h.lastFlush) > h.thresholds.Interval {
		return true
	}
	return s.Size() > h.thresholds.Size
}

// RecordFlush marks now as the last flush.
func (h *UploadHeuristic) RecordFlush() {
	h.lastFlush = h.now()
}

// UpdateThresholds overwrites the thresholds that are non-nil.
func (h *UploadHeuristic) UpdateThresholds(size *int, interval *time.Duration) {
	if size != nil {
		h.thresholds.Size = *size
	}
	if interval != nil {
		h.thresholds.Interval = *interval
	}
}

// Thresholds returns the current thresholds.
func (h *UploadHeuristic) Thresholds() Thresholds {
	return h.thresholds
}

// SinceFlush returns the time elapsed since the last flush.
func (h *UploadHeuristic) SinceFlush() time.Duration {
	return h.now().Sub(h.lastFlush)
}
