// Package discovery watches one directory tree for media files and turns
// raw file-system changes into a debounced stream of Added/Removed events.
//
// A Discoverer owns at most one watch. StartDiscovering replaces any active
// watch, scans the tree to establish a baseline, then reports incremental
// changes coalesced over a fixed debounce window. StopDiscovering tears the
// watch down and guarantees no further events once it returns.
//
// Start and stop are fire-and-forget: failures (bad path, exhausted watch
// handles, a watch lost mid-session) are logged and leave the Discoverer
// idle. Consumers observe them only as the absence of events.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

var (
	sharedOnce sync.Once
	shared     *Discoverer
)

// Shared returns the process-wide Discoverer, creating it on first use.
// Concurrent first calls all observe the same instance.
func Shared() *Discoverer {
	sharedOnce.Do(func() {
		shared = New()
	})
	return shared
}

// Discoverer maintains a single recursive media watch.
type Discoverer struct {
	ctl sync.Mutex // serializes StartDiscovering/StopDiscovering

	mu      sync.Mutex // guards the fields below
	cfg     config
	state   State
	root    string
	current *session
	lastErr error

	subsMu    sync.RWMutex
	subs      map[uint64]subscriber
	subOrder  []uint64
	nextSubID uint64
}

// New creates an independent Discoverer. Most callers want Shared.
func New(opts ...Option) *Discoverer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Discoverer{
		cfg:  cfg,
		subs: make(map[uint64]subscriber),
	}
}

// Configure applies opts. Changes take effect on the next StartDiscovering.
func (d *Discoverer) Configure(opts ...Option) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, opt := range opts {
		opt(&d.cfg)
	}
}

// State returns the current lifecycle state.
func (d *Discoverer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Root returns the watched directory, or "" when idle.
func (d *Discoverer) Root() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.root
}

// StartDiscovering watches path and its subdirectories for media files.
// Any active watch is torn down first. Every matching file already present
// is reported as Added before incremental events begin. Invalid or
// unreadable paths leave the Discoverer idle.
func (d *Discoverer) StartDiscovering(path string) {
	d.ctl.Lock()
	defer d.ctl.Unlock()

	d.stopLocked()

	d.mu.Lock()
	cfg := d.cfg
	d.mu.Unlock()
	log := cfg.logger.With("component", "discovery")

	root, err := validateRoot(path)
	if err != nil {
		d.fail(log, path, err)
		return
	}

	id, err := cfg.statRoot(root)
	if err != nil {
		d.fail(log, root, fmt.Errorf("%w: %w", ErrInvalidPath, err))
		return
	}

	fs, err := cfg.factory()
	if err != nil {
		d.fail(log, root, classifyBackendErr(err))
		return
	}
	if err := fs.Add(root); err != nil {
		fs.Close()
		d.fail(log, root, classifyBackendErr(err))
		return
	}

	sid := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		d:          d,
		id:         sid,
		root:       root,
		rootID:     id,
		statRoot:   cfg.statRoot,
		checkEvery: cfg.rootCheck,
		fs:         fs,
		matcher:    cfg.matcher,
		window:     cfg.debounce,
		workers:    cfg.scanWorkers,
		log:        log.With("root", root, "session", sid),
		pending:    newPendingSet(),
		known:      make(map[string]struct{}),
		dirs:       make(map[string]struct{}),
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	d.mu.Lock()
	d.current = s
	d.state = Scanning
	d.root = root
	d.lastErr = nil
	d.mu.Unlock()

	s.log.Info("discovery started")
	go s.run(ctx)
}

// StopDiscovering ends the active watch, if any. It cancels the pending
// debounce window, releases the backend, and waits for the session worker,
// so no event is delivered after it returns. No-op when idle.
func (d *Discoverer) StopDiscovering() {
	d.ctl.Lock()
	defer d.ctl.Unlock()
	d.stopLocked()
}

// stopLocked tears down the current session. Caller holds d.ctl.
func (d *Discoverer) stopLocked() {
	d.mu.Lock()
	s := d.current
	d.current = nil
	d.state = Idle
	d.root = ""
	d.mu.Unlock()

	if s == nil {
		return
	}
	s.cancel()
	<-s.done
	s.log.Info("discovery stopped")
}

// fail records a start failure and leaves the Discoverer idle.
func (d *Discoverer) fail(log *slog.Logger, path string, err error) {
	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()
	log.Warn("discovery not started", "path", path, "error", err)
}

// Err returns why the last start failed or the last watch ended on its own.
// It is reset by every successful start.
func (d *Discoverer) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// promote moves s from Scanning to Watching if it is still current.
func (d *Discoverer) promote(s *session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == s {
		d.state = Watching
	}
}

// sessionEnded handles a session that stopped on its own.
func (d *Discoverer) sessionEnded(s *session, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != s {
		return
	}
	d.current = nil
	d.state = Idle
	d.root = ""
	d.lastErr = err
}

// validateRoot resolves path to an absolute, readable directory.
func validateRoot(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, abs)
	}
	f, err := os.Open(abs)
	if err != nil {
		return "", classifyBackendErr(err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	return abs, nil
}
