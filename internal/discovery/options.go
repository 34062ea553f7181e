package discovery

import (
	"log/slog"
	"time"

	fsw "github.com/corey/mediascout/internal/adapters/fsnotify"
	"github.com/corey/mediascout/internal/domain/media"
	"github.com/corey/mediascout/internal/ports"
)

const (
	// DefaultDebounce is the coalescing window for raw change events.
	DefaultDebounce = 250 * time.Millisecond

	// DefaultScanWorkers bounds parallel directory reads during a scan.
	DefaultScanWorkers = 4

	// DefaultRootCheck is how often a session confirms its root is still
	// the directory it started on.
	DefaultRootCheck = 2 * time.Second
)

// rootID is the device and inode of a watched root.
type rootID struct {
	dev, ino uint64
}

type config struct {
	matcher     ports.Matcher
	debounce    time.Duration
	logger      *slog.Logger
	factory     ports.WatcherFactory
	scanWorkers int
	rootCheck   time.Duration
	statRoot    func(string) (rootID, error)
}

func defaultConfig() config {
	return config{
		matcher:     media.DefaultMatcher(),
		debounce:    DefaultDebounce,
		logger:      slog.Default(),
		factory:     fsw.Factory(fsw.DefaultBuffer),
		scanWorkers: DefaultScanWorkers,
		rootCheck:   DefaultRootCheck,
		statRoot:    statRoot,
	}
}

// Option configures a Discoverer.
type Option func(*config)

// WithMatcher sets the media filter. A nil matcher is ignored.
func WithMatcher(m ports.Matcher) Option {
	return func(c *config) {
		if m != nil {
			c.matcher = m
		}
	}
}

// WithDebounce sets the coalescing window. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWatcherFactory replaces the file-system backend.
func WithWatcherFactory(f ports.WatcherFactory) Option {
	return func(c *config) {
		if f != nil {
			c.factory = f
		}
	}
}

// WithScanWorkers bounds the goroutines reading directories during a scan.
func WithScanWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.scanWorkers = n
		}
	}
}

// WithRootCheck sets how often the root's identity is re-checked to catch
// an unmounted volume, which the backend does not report.
func WithRootCheck(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.rootCheck = d
		}
	}
}
