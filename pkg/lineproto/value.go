package lineproto

import "fmt"

// Tag is a tag key with either a string value or a HexID value.
type Tag struct {
	Key   string
	Value string
	ID    HexID
	IsHex bool
}

// StringTag returns a tag with a string value.
func StringTag(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// HexTag returns a tag whose value is a hexadecimal identifier.
func HexTag(key string, id HexID) Tag {
	return Tag{Key: key, ID: id, IsHex: true}
}

// Field is a field key and its value. Value holds one of string, HexID,
// bool, a signed or unsigned integer type, float32 or float64.
type Field struct {
	Key       string
	Value     interface{}
	Precision int
}

// StringField returns a string field.
func StringField(key, value string) Field { return Field{Key: key, Value: value, Precision: -1} }

// HexField returns a quoted hexadecimal identifier field.
func HexField(key string, id HexID) Field { return Field{Key: key, Value: id, Precision: -1} }

// BoolField returns a boolean field.
func BoolField(key string, value bool) Field { return Field{Key: key, Value: value, Precision: -1} }

// IntField returns an integer field.
func IntField(key string, value int64) Field { return Field{Key: key, Value: value, Precision: -1} }

// FloatField returns a float field written with prec decimals. A negative
// prec uses the builder default.
func FloatField(key string, value float64, prec int) Field {
	return Field{Key: key, Value: value, Precision: prec}
}

// AddTags appends every tag in order.
func (b *Builder) AddTags(tags []Tag) error {
	for _, t := range tags {
		var err error
		if t.IsHex {
			err = b.AddHexTag(t.Key, t.ID)
		} else {
			err = b.AddTag(t.Key, t.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// AddField appends f using the encoding for the dynamic type of f.Value.
// A Field literal with a zero Precision writes floats with no decimals;
// use FloatField or a negative Precision for the builder default.
func (b *Builder) AddField(f Field) error {
	if !b.canField() {
		return &StateError{Op: "AddField", State: b.state}
	}
	switch v := f.Value.(type) {
	case string:
		return b.AddStringField(f.Key, v)
	case HexID:
		return b.AddHexField(f.Key, v)
	case bool:
		return b.AddBoolField(f.Key, v)
	case int:
		return b.AddIntField(f.Key, int64(v))
	case int8:
		return b.AddIntField(f.Key, int64(v))
	case int16:
		return b.AddIntField(f.Key, int64(v))
	case int32:
		return b.AddIntField(f.Key, int64(v))
	case int64:
		return b.AddIntField(f.Key, v)
	case uint8:
		return b.AddIntField(f.Key, int64(v))
	case uint16:
		return b.AddIntField(f.Key, int64(v))
	case uint32:
		return b.AddIntField(f.Key, int64(v))
	case float32:
		return b.AddFloatField(f.Key, float64(v), f.Precision)
	case float64:
		return b.AddFloatField(f.Key, v, f.Precision)
	default:
		return fmt.Errorf("%w: %s has type %T", ErrUnsupportedValue, f.Key, f.Value)
	}
}

// AddFields appends every field in order.
func (b *Builder) AddFields(fields []Field) error {
	for _, f := range fields {
		if err := b.AddField(f); err != nil {
			return err
		}
	}
	return nil
}

// AppendLine writes one complete line. On error the builder is rolled back
// to where it was before the call.
func (b *Builder) AppendLine(measurement string, tags []Tag, fields []Field, ts int64) error {
	cp := b.Checkpoint()
	err := b.BeginMeasurement(measurement)
	if err == nil {
		err = b.AddTags(tags)
	}
	if err == nil {
		err = b.AddFields(fields)
	}
	if err == nil {
		err = b.SetTimestamp(ts)
	}
	if err != nil {
		b.Rollback(cp)
		return fmt.Errorf("append %s: %w", measurement, err)
	}
	return nil
}
