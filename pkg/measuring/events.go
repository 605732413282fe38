package measuring

import "time"

// FlushEvent describes a successful flush.
type FlushEvent struct {
	Bytes    int
	Awaited  bool
	Duration time.Duration
}

// FlushErrorEvent describes a failed flush.
type FlushErrorEvent struct {
	Bytes int
	// Code is the numeric transport code, see influx.ReturnCode.
	Code int
	Err  error
	// Disconnected is set when the writer needs Reconnect before the
	// next flush.
	Disconnected bool
}

// EventHandler is notified of flush outcomes.
type EventHandler interface {
	OnFlush(FlushEvent)
	OnFlushError(FlushErrorEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to
// handle only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnFlush(FlushEvent)           {}
func (BaseEventHandler) OnFlushError(FlushErrorEvent) {}
