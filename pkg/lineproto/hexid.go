package lineproto

// HexID is a 32-bit identifier rendered as exactly eight upper-case
// hexadecimal digits. Its text form never needs escaping.
type HexID uint32

const hexDigits = "0123456789ABCDEF"

// HexIDLen is the length of the text form of a HexID.
const HexIDLen = 8

// AppendTo appends the eight digit text form of id to dst.
func (id HexID) AppendTo(dst []byte) []byte {
	for shift := 28; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(uint32(id)>>uint(shift))&0xF])
	}
	return dst
}

func (id HexID) String() string {
	return string(id.AppendTo(make([]byte, 0, HexIDLen)))
}
