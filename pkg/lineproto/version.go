package lineproto

// Version information for the lineproto module.
const (
	// Version is the current version of the lineproto module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)
