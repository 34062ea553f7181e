package ports

import "time"

// EventKind says whether a media file appeared or went away.
type EventKind int

const (
	// Added is emitted once for every matching file present when a watch
	// starts and once for every matching file that appears afterwards.
	Added EventKind = iota
	// Removed is emitted once for every previously added file that disappears.
	Removed
)

// String returns a human-readable representation of the kind.
func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so events serialize as
// {"kind":"added"} on the wire.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a discovery notification delivered to subscribers.
type Event struct {
	Kind    EventKind `json:"kind"`
	Path    string    `json:"path"`              // absolute path of the media file
	Root    string    `json:"root"`              // watch root that produced the event
	Session string    `json:"session,omitempty"` // id of the start session
	Time    time.Time `json:"time"`
}

// Matcher decides which paths are media candidates. Implementations must be
// safe for concurrent use: the baseline scan calls them from several goroutines.
type Matcher interface {
	// Match reports whether the regular file at path should be discovered.
	Match(path string) bool

	// SkipDir reports whether the directory at path should be neither
	// scanned nor watched. Never called for the watch root itself.
	SkipDir(path string) bool
}
