package discovery

// State is the lifecycle state of a Discoverer.
type State int

const (
	// Idle means no watch is active.
	Idle State = iota
	// Scanning means the baseline enumeration is in progress.
	Scanning
	// Watching means incremental events are flowing.
	Watching
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Watching:
		return "watching"
	default:
		return "unknown"
	}
}
