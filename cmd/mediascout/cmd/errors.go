package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/corey/mediascout/internal/adapters/socket"
	bolterrors "go.etcd.io/bbolt/errors"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, bolterrors.ErrTimeout) || strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock checks the daemon state and returns actionable guidance
// when a bbolt open fails due to lock contention. It distinguishes three
// scenarios: daemon running, stale socket, and unknown lock holder.
func diagnoseDBLock(sockPath string) string {
	if socket.NewClient(sockPath).Ping() {
		return "library is locked by a running daemon\n" +
			"  → stop it first:  mediascout daemon stop\n" +
			"  → then retry your command"
	}

	if _, err := os.Stat(sockPath); err == nil {
		return fmt.Sprintf("library is locked, daemon socket exists but is not responding\n"+
			"  → a previous daemon may have crashed\n"+
			"  → find the process:  ps aux | grep 'mediascout daemon'\n"+
			"  → kill it:           kill <PID>\n"+
			"  → clean up socket:   rm %s", sockPath)
	}

	return "library is locked by another process\n" +
		"  → find it:  lsof <root>/.mediascout/library.db"
}
