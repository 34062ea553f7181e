package discovery

import (
	"errors"
	"fmt"
)

// Failure taxonomy. None of these reach the caller of StartDiscovering or
// StopDiscovering; they are recorded on the Discoverer and logged.
var (
	// ErrInvalidPath means the start target is missing, not a directory,
	// or unreadable.
	ErrInvalidPath = errors.New("invalid watch path")

	// ErrWatchLost means the watch disappeared mid-session (root removed,
	// volume unmounted, backend closed). The session stops implicitly.
	ErrWatchLost = errors.New("watch lost")

	// ErrResourceExhaustion means the host ran out of watch handles or
	// descriptors.
	ErrResourceExhaustion = errors.New("watch resources exhausted")
)

// classifyBackendErr wraps a backend failure in the matching sentinel.
func classifyBackendErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidPath) || errors.Is(err, ErrResourceExhaustion) || errors.Is(err, ErrWatchLost) {
		return err
	}
	if isExhaustion(err) {
		return fmt.Errorf("%w: %w", ErrResourceExhaustion, err)
	}
	return fmt.Errorf("%w: %w", ErrInvalidPath, err)
}
