package lineproto

import "strings"

// Escape sets used when writing the different parts of a line.
const (
	measurementEscapes = ", "
	keyEscapes         = ",= "
	stringFieldEscapes = `"\`
)

// appendEscaped appends s to dst, writing a backslash before every byte
// that occurs in set.
func appendEscaped(dst []byte, s, set string) []byte {
	start := 0
	for {
		i := strings.IndexAny(s[start:], set)
		if i < 0 {
			break
		}
		pos := start + i
		dst = append(dst, s[start:pos]...)
		dst = append(dst, '\\', s[pos])
		start = pos + 1
	}
	return append(dst, s[start:]...)
}

// EscapeKey returns s escaped for use as a tag key, tag value or field key.
func EscapeKey(s string) string {
	return string(appendEscaped(nil, s, keyEscapes))
}

// EscapeMeasurement returns s escaped for use as a measurement name.
func EscapeMeasurement(s string) string {
	return string(appendEscaped(nil, s, measurementEscapes))
}

// EscapeStringField returns s escaped for use inside a quoted string field.
// The surrounding quotes are not added.
func EscapeStringField(s string) string {
	return string(appendEscaped(nil, s, stringFieldEscapes))
}
