// mediascout watches a directory tree and keeps a catalog of the media files in it.
// Single binary: foreground watcher, background daemon, and its control client.
package main

import (
	"os"

	"github.com/corey/mediascout/cmd/mediascout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
