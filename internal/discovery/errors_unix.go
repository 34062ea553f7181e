//go:build unix

package discovery

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isExhaustion reports descriptor or inotify-watch limits.
// inotify_add_watch returns ENOSPC when max_user_watches is reached.
func isExhaustion(err error) bool {
	return errors.Is(err, unix.EMFILE) ||
		errors.Is(err, unix.ENFILE) ||
		errors.Is(err, unix.ENOSPC) ||
		errors.Is(err, unix.ENOMEM)
}
