package ports

import "errors"

// ErrOverflow is sent on FSWatcher.Errors when the backend dropped events
// because its queue filled up. Consumers must treat their view of the tree
// as stale and rescan.
var ErrOverflow = errors.New("watch queue overflow")

// Op is the kind of a raw file-system change.
type Op int

const (
	// OpCreated means a file or directory appeared at Path.
	OpCreated Op = iota
	// OpModified means the contents of Path changed.
	OpModified
	// OpRemoved means Path was deleted.
	OpRemoved
	// OpRenamed means Path was moved away. The new name, if it is inside a
	// watched directory, arrives as a separate OpCreated.
	OpRenamed
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreated:
		return "created"
	case OpModified:
		return "modified"
	case OpRemoved:
		return "removed"
	case OpRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// RawEvent is a single uncoalesced change reported by the backend.
type RawEvent struct {
	Path string
	Op   Op
}

// FSWatcher is the host change-notification facility. It watches individual
// directories (not trees); recursion is the caller's job. Only one consumer
// reads Events and Errors.
type FSWatcher interface {
	// Add starts watching dir for changes to its direct entries.
	Add(dir string) error

	// Remove stops watching dir. Removing a directory that is not watched
	// is not an error.
	Remove(dir string) error

	// Events delivers raw changes. The channel is closed after Close.
	Events() <-chan RawEvent

	// Errors delivers backend failures, including ErrOverflow. The channel
	// is closed after Close.
	Errors() <-chan error

	// Close releases the underlying handle. Safe to call multiple times.
	Close() error
}

// WatcherFactory creates a fresh FSWatcher for one watch session.
type WatcherFactory func() (FSWatcher, error)
