// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the mediascout daemon: create, start, stop.
package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/corey/mediascout/internal/adapters/bbolt"
	"github.com/corey/mediascout/internal/adapters/socket"
	"github.com/corey/mediascout/internal/adapters/web"
	"github.com/corey/mediascout/internal/config"
	"github.com/corey/mediascout/internal/discovery"
	"github.com/corey/mediascout/internal/domain/media"
	"github.com/corey/mediascout/internal/ports"
)

// App is the top-level container wiring all components together.
type App struct {
	Root       string // home root: state dir, socket and port derive from it
	Paths      *Paths
	Settings   *config.Config
	Library    ports.Library
	Discoverer *discovery.Discoverer
	Server     *socket.Server
	WebServer  *web.Server // nil when http.enabled is false

	log         *slog.Logger
	store       *bbolt.Store
	mu          sync.Mutex // serializes StartWatch/StopWatch
	libRoot     string     // root whose catalog LibraryFiles serves
	unsubscribe func()
}

// Config holds initialization parameters for the App.
type Config struct {
	Root       string
	Settings   *config.Config        // nil: config.Defaults()
	Logger     *slog.Logger          // nil: slog.Default()
	Discoverer *discovery.Discoverer // nil: discovery.Shared()
}

// New creates an App with all dependencies wired. Does not start services.
func New(cfg Config) (*App, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("root required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	settings := cfg.Settings
	if settings == nil {
		settings = config.Defaults()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	d := cfg.Discoverer
	if d == nil {
		d = discovery.Shared()
	}

	matcher, err := media.NewMatcher(settings.MatcherOptions())
	if err != nil {
		return nil, fmt.Errorf("media matcher: %w", err)
	}

	paths := NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	dbPath := settings.DBPath
	if dbPath == "" {
		dbPath = paths.DB
	}
	store, err := bbolt.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	d.Configure(
		discovery.WithMatcher(matcher),
		discovery.WithDebounce(settings.Debounce),
		discovery.WithScanWorkers(settings.ScanWorkers),
		discovery.WithLogger(log),
	)

	a := &App{
		Root:       root,
		Paths:      paths,
		Settings:   settings,
		Library:    store,
		Discoverer: d,
		log:        log.With("component", "app"),
		store:      store,
		libRoot:    root,
	}

	sockPath := settings.Socket
	if sockPath == "" {
		sockPath = socket.SocketPath(root)
	}
	a.Server = socket.NewServer(a, sockPath, log)
	if settings.HTTP.Enabled {
		a.WebServer = web.NewServer(a, a.openFeed, paths.PortFile, log)
	}
	return a, nil
}

// Start brings up the control socket, the HTTP API and the catalog
// subscriber, then begins discovering the home root. A failed initial watch
// is logged and leaves the daemon idle; it can be retargeted later.
func (a *App) Start() error {
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	// HTTP API is non-fatal if the port is unavailable
	if a.WebServer != nil {
		port := a.Settings.HTTP.Port
		if port == 0 {
			port = web.DefaultPort(a.Root)
		}
		if err := a.WebServer.Start(port); err != nil {
			a.log.Warn("http api unavailable", "error", err)
		}
	}

	a.unsubscribe = a.Discoverer.SubscribeFunc(a.record)

	if st := a.StartWatch(a.Root); st.Error != "" {
		a.log.Warn("initial watch failed", "root", a.Root, "error", st.Error)
	}
	return nil
}

// Stop tears down in reverse order. The watch stops first so no event
// reaches the store after it is closed.
func (a *App) Stop() error {
	a.StopWatch()
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.WebServer != nil {
		a.WebServer.Stop()
	}
	a.Server.Stop()
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// Status implements socket.AppQueries.
func (a *App) Status() socket.StatusResult {
	st := socket.StatusResult{
		State: a.Discoverer.State().String(),
		Root:  a.Discoverer.Root(),
	}
	if err := a.Discoverer.Err(); err != nil {
		st.Error = err.Error()
	}
	return st
}

// StartWatch retargets discovery to path. The catalog for path is cleared
// first and rebuilt from the baseline scan.
func (a *App) StartWatch(path string) socket.StatusResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return socket.StatusResult{State: discovery.Idle.String(), Error: err.Error()}
	}

	// Stop before the reset so a previous session cannot write into the
	// cleared catalog.
	a.Discoverer.StopDiscovering()
	if err := a.Library.ResetRoot(abs); err != nil {
		a.log.Warn("reset catalog", "root", abs, "error", err)
	}
	a.libRoot = abs
	a.Discoverer.StartDiscovering(abs)
	return a.Status()
}

// StopWatch pauses discovery. The catalog keeps its entries.
func (a *App) StopWatch() socket.StatusResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Discoverer.StopDiscovering()
	return a.Status()
}

// LibraryFiles implements socket.AppQueries.
func (a *App) LibraryFiles() (string, []ports.MediaFile, error) {
	a.mu.Lock()
	root := a.libRoot
	a.mu.Unlock()
	files, err := a.Library.Files(root)
	if err != nil {
		return root, nil, fmt.Errorf("list catalog: %w", err)
	}
	return root, files, nil
}

// LibraryCount implements socket.AppQueries.
func (a *App) LibraryCount() (int, error) {
	a.mu.Lock()
	root := a.libRoot
	a.mu.Unlock()
	n, err := a.Library.Count(root)
	if err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	return n, nil
}

func (a *App) openFeed(buffer int) (<-chan ports.Event, func()) {
	sub := a.Discoverer.Subscribe(buffer)
	return sub.Events(), sub.Close
}
