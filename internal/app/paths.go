package app

import (
	"os"
	"path/filepath"
)

// StateDirName is the per-root state directory. The media matcher never
// descends into it, so the daemon's own files never show up as events.
const StateDirName = ".mediascout"

// Paths holds all resolved filesystem paths for the .mediascout/ state directory.
// All fields are pre-computed strings.
type Paths struct {
	Root string // .mediascout/
	DB   string // .mediascout/library.db

	LogDir    string // .mediascout/log/
	DaemonLog string // .mediascout/log/daemon.log

	RunDir   string // .mediascout/run/
	PIDFile  string // .mediascout/run/daemon.pid
	PortFile string // .mediascout/run/http.port
}

// NewPaths constructs all resolved paths from a watch root directory.
func NewPaths(watchRoot string) *Paths {
	root := filepath.Join(watchRoot, StateDirName)
	return &Paths{
		Root: root,
		DB:   filepath.Join(root, "library.db"),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		RunDir:   filepath.Join(root, "run"),
		PIDFile:  filepath.Join(root, "run", "daemon.pid"),
		PortFile: filepath.Join(root, "run", "http.port"),
	}
}

// EnsureDirs creates all subdirectories under .mediascout/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes ephemeral runtime files (PID file and port file).
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.PortFile)
}
