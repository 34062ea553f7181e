// Package bbolt implements the ports.Library interface using bbolt (embedded B+ tree).
// Each watch root gets its own top-level bucket keyed by the absolute root path;
// entries inside it map file path to a JSON-serialized ports.MediaFile.
// Writes are transactional.
package bbolt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/corey/mediascout/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Store implements ports.Library backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutFile records or refreshes a discovered file under its root.
func (s *Store) PutFile(f ports.MediaFile) error {
	if f.Root == "" || f.Path == "" {
		return fmt.Errorf("media file needs root and path")
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal media file: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(f.Root))
		if err != nil {
			return err
		}
		return b.Put([]byte(f.Path), data)
	})
}

// DeleteFile removes a file from the catalog. Idempotent.
func (s *Store) DeleteFile(root, path string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(root))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(path))
	})
}

// Files lists all entries for root in path order (bbolt keys are sorted).
// Returns nil, nil for an unknown root.
func (s *Store) Files(root string) ([]ports.MediaFile, error) {
	var files []ports.MediaFile
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(root))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var f ports.MediaFile
			if err := json.Unmarshal(v, &f); err != nil {
				return fmt.Errorf("unmarshal %q: %w", k, err)
			}
			files = append(files, f)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Count returns the number of entries for root.
func (s *Store) Count(root string) (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(root)); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}

// ResetRoot drops every entry under root.
// Idempotent: resetting an unknown root is not an error.
func (s *Store) ResetRoot(root string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(root)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		return nil
	})
}
