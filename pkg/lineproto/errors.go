package lineproto

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocolState is matched by every error returned for an operation
	// that is not legal in the builder's current state.
	ErrProtocolState = errors.New("lineproto: operation not allowed in current state")

	// ErrUnsupportedValue is returned by AddField for a value type that has
	// no line protocol encoding.
	ErrUnsupportedValue = errors.New("lineproto: unsupported field value")

	// ErrInvalidValue is returned for a name, key or value that line
	// protocol cannot represent: an empty measurement name, tag key, tag
	// value or field key, and NaN or infinite floats.
	ErrInvalidValue = errors.New("lineproto: value not representable")
)

func invalidValue(op, key, reason string) error {
	return fmt.Errorf("%w: %s %q: %s", ErrInvalidValue, op, key, reason)
}

// StateError describes a builder operation rejected by the state machine.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("lineproto: %s not allowed in state %s", e.Op, e.State)
}

// Is reports whether target is ErrProtocolState.
func (e *StateError) Is(target error) bool {
	return target == ErrProtocolState
}
