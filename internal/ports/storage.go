// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. The discovery core
// depends only on these interfaces, never on concrete implementations.
package ports

import "time"

// Library persists the catalog of discovered media files. It is the consumer
// side of the discovery stream: the Discoverer itself stores nothing.
// Entries are scoped by watch root. Concurrent reads are safe; writes are
// serialized by the adapter.
type Library interface {
	// PutFile records or refreshes a discovered file.
	PutFile(f MediaFile) error

	// DeleteFile removes a file from the catalog. Idempotent.
	DeleteFile(root, path string) error

	// Files lists all catalog entries for root, sorted by path.
	Files(root string) ([]MediaFile, error)

	// Count returns the number of entries for root.
	Count(root string) (int, error)

	// ResetRoot drops every entry under root. Idempotent.
	ResetRoot(root string) error
}

// MediaFile is a library catalog entry.
type MediaFile struct {
	Path         string    `json:"path"`
	Root         string    `json:"root"`
	Kind         string    `json:"kind"` // video, audio, subtitle, playlist
	Size         int64     `json:"size"`
	ModTime      time.Time `json:"mod_time"`
	DiscoveredAt time.Time `json:"discovered_at"`
}
