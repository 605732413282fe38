package measuring

import (
	"github.com/spaolacci/murmur3"

	"github.com/bft-labs/influxship/pkg/lineproto"
)

// HostInfo identifies the component that produces measurements.
type HostInfo struct {
	Topic     string
	NodeName  string
	Namespace string
}

// FullName is the namespace immediately followed by the node name.
func (h HostInfo) FullName() string {
	return h.Namespace + h.NodeName
}

// Hash is the 32-bit MurmurHash3 (x86, seed 0) of FullName, used as the
// publisher identifier in latency and arrival lines.
func (h HostInfo) Hash() lineproto.HexID {
	return lineproto.HexID(murmur3.Sum32WithSeed([]byte(h.FullName()), 0))
}

// MessageVars are the tracking values carried inside a published message.
type MessageVars struct {
	// Timestamp is the send time in nanoseconds.
	Timestamp int64
	// Identifier is the per-publisher message sequence number.
	Identifier int64
}
