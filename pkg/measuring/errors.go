package measuring

import "errors"

var (
	// ErrUnknownMeasurement is returned for a key that was never registered.
	ErrUnknownMeasurement = errors.New("unknown measurement key")

	// ErrDisconnected is returned by flushes after a transport failure,
	// until Reconnect succeeds. Pending lines stay buffered up to
	// Config.MaxPendingBytes; records past that are dropped with
	// ErrPendingLimit. Nothing reconnects on its own: the caller must call
	// Reconnect.
	ErrDisconnected = errors.New("writer disconnected")

	// ErrPendingLimit is returned, together with ErrDisconnected, for a
	// line dropped because a disconnected writer holds MaxPendingBytes.
	ErrPendingLimit = errors.New("pending buffer limit reached")

	// ErrClosed is returned by calls on a closed writer.
	ErrClosed = errors.New("writer closed")

	// ErrInvalidConfig is wrapped by configuration validation errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)
