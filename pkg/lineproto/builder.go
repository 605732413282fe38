package lineproto

import (
	"math"
	"strconv"
)

// Default float precisions. The first field of a line is written with more
// digits than the fields that follow it.
const (
	DefaultFirstFloatPrecision = 5
	DefaultFloatPrecision      = 2
)

// State is the position of the builder inside the line being written.
type State int

const (
	StateEmpty State = iota
	StateAfterMeasurement
	StateAfterTag
	StateAfterField
	StateAfterTimestamp
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateAfterMeasurement:
		return "AfterMeasurement"
	case StateAfterTag:
		return "AfterTag"
	case StateAfterField:
		return "AfterField"
	case StateAfterTimestamp:
		return "AfterTimestamp"
	default:
		return "Unknown"
	}
}

// Builder accumulates line protocol lines into one buffer.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	buf   []byte
	state State

	firstPrec int
	prec      int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithFloatPrecision sets the number of decimals used for float fields
// written without an explicit precision. first applies to the first field
// of a line, rest to every following field.
func WithFloatPrecision(first, rest int) BuilderOption {
	return func(b *Builder) {
		b.firstPrec = first
		b.prec = rest
	}
}

// WithCapacity preallocates the line buffer.
func WithCapacity(n int) BuilderOption {
	return func(b *Builder) {
		b.buf = make([]byte, 0, n)
	}
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		firstPrec: DefaultFirstFloatPrecision,
		prec:      DefaultFloatPrecision,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current builder state.
func (b *Builder) State() State { return b.state }

// Size returns the number of buffered bytes.
func (b *Builder) Size() int { return len(b.buf) }

// Bytes returns the buffered lines. The slice is only valid until the next
// call that modifies the builder.
func (b *Builder) Bytes() []byte { return b.buf }

// String returns a copy of the buffered lines.
func (b *Builder) String() string { return string(b.buf) }

// Clear discards all buffered lines and resets the state to StateEmpty.
// The underlying storage is kept for reuse.
func (b *Builder) Clear() {
	b.buf = b.buf[:0]
	b.state = StateEmpty
}

// BeginMeasurement starts a new line with the given measurement name.
//
// If the buffer already holds data, a line break is appended first. This
// happens unconditionally, even if the previous line was never given a
// timestamp, so the previous line is left as written. The only error is
// ErrInvalidValue for an empty name, which leaves the buffer untouched.
func (b *Builder) BeginMeasurement(name string) error {
	if name == "" {
		return invalidValue("BeginMeasurement", name, "empty measurement name")
	}
	if len(b.buf) > 0 {
		b.buf = append(b.buf, '\n')
	}
	b.buf = appendEscaped(b.buf, name, measurementEscapes)
	b.state = StateAfterMeasurement
	return nil
}

func (b *Builder) canTag() bool {
	return b.state == StateAfterMeasurement || b.state == StateAfterTag
}

func (b *Builder) canField() bool {
	return b.canTag() || b.state == StateAfterField
}

// AddTag appends a tag. Commas, equals signs and spaces in key and value
// are escaped. Empty keys and values are rejected with ErrInvalidValue.
func (b *Builder) AddTag(key, value string) error {
	if !b.canTag() {
		return &StateError{Op: "AddTag", State: b.state}
	}
	if key == "" {
		return invalidValue("AddTag", key, "empty tag key")
	}
	if value == "" {
		return invalidValue("AddTag", key, "empty tag value")
	}
	b.buf = append(b.buf, ',')
	b.buf = appendEscaped(b.buf, key, keyEscapes)
	b.buf = append(b.buf, '=')
	b.buf = appendEscaped(b.buf, value, keyEscapes)
	b.state = StateAfterTag
	return nil
}

// AddHexTag appends a tag whose value is a hexadecimal identifier.
func (b *Builder) AddHexTag(key string, id HexID) error {
	if !b.canTag() {
		return &StateError{Op: "AddHexTag", State: b.state}
	}
	if key == "" {
		return invalidValue("AddHexTag", key, "empty tag key")
	}
	b.buf = append(b.buf, ',')
	b.buf = appendEscaped(b.buf, key, keyEscapes)
	b.buf = append(b.buf, '=')
	b.buf = id.AppendTo(b.buf)
	b.state = StateAfterTag
	return nil
}

// beginField writes the delimiter and escaped key of a field.
func (b *Builder) beginField(op, key string) error {
	if !b.canField() {
		return &StateError{Op: op, State: b.state}
	}
	if key == "" {
		return invalidValue(op, key, "empty field key")
	}
	if b.state == StateAfterField {
		b.buf = append(b.buf, ',')
	} else {
		b.buf = append(b.buf, ' ')
	}
	b.buf = appendEscaped(b.buf, key, keyEscapes)
	b.buf = append(b.buf, '=')
	b.state = StateAfterField
	return nil
}

// AddStringField appends a quoted string field.
func (b *Builder) AddStringField(key, value string) error {
	if err := b.beginField("AddStringField", key); err != nil {
		return err
	}
	b.buf = append(b.buf, '"')
	b.buf = appendEscaped(b.buf, value, stringFieldEscapes)
	b.buf = append(b.buf, '"')
	return nil
}

// AddHexField appends a quoted string field holding a hexadecimal identifier.
func (b *Builder) AddHexField(key string, id HexID) error {
	if err := b.beginField("AddHexField", key); err != nil {
		return err
	}
	b.buf = append(b.buf, '"')
	b.buf = id.AppendTo(b.buf)
	b.buf = append(b.buf, '"')
	return nil
}

// AddBoolField appends a boolean field, written as t or f.
func (b *Builder) AddBoolField(key string, value bool) error {
	if err := b.beginField("AddBoolField", key); err != nil {
		return err
	}
	if value {
		b.buf = append(b.buf, 't')
	} else {
		b.buf = append(b.buf, 'f')
	}
	return nil
}

// AddIntField appends an integer field with the i suffix.
func (b *Builder) AddIntField(key string, value int64) error {
	if err := b.beginField("AddIntField", key); err != nil {
		return err
	}
	b.buf = strconv.AppendInt(b.buf, value, 10)
	b.buf = append(b.buf, 'i')
	return nil
}

// AddFloatField appends a float field in fixed notation with prec decimals.
// A negative prec selects the builder default for the field's position.
// NaN and infinities are rejected with ErrInvalidValue.
func (b *Builder) AddFloatField(key string, value float64, prec int) error {
	if prec < 0 {
		prec = b.defaultPrecision()
	}
	if b.canField() && (math.IsNaN(value) || math.IsInf(value, 0)) {
		return invalidValue("AddFloatField", key, "NaN or infinite value")
	}
	if err := b.beginField("AddFloatField", key); err != nil {
		return err
	}
	b.buf = strconv.AppendFloat(b.buf, value, 'f', prec, 64)
	return nil
}

func (b *Builder) defaultPrecision() int {
	if b.state == StateAfterField {
		return b.prec
	}
	return b.firstPrec
}

// SetTimestamp terminates the current line with a nanosecond timestamp.
// It is only legal once the line has at least one field.
func (b *Builder) SetTimestamp(ns int64) error {
	if b.state != StateAfterField {
		return &StateError{Op: "SetTimestamp", State: b.state}
	}
	b.buf = append(b.buf, ' ')
	b.buf = strconv.AppendInt(b.buf, ns, 10)
	b.state = StateAfterTimestamp
	return nil
}

// Checkpoint records the builder position.
type Checkpoint struct {
	size  int
	state State
}

// Checkpoint returns the current position for a later Rollback.
func (b *Builder) Checkpoint() Checkpoint {
	return Checkpoint{size: len(b.buf), state: b.state}
}

// Rollback discards everything written after cp was taken. A checkpoint
// taken before a Clear is ignored.
func (b *Builder) Rollback(cp Checkpoint) {
	if cp.size > len(b.buf) {
		return
	}
	b.buf = b.buf[:cp.size]
	b.state = cp.state
}
