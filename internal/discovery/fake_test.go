package discovery

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/corey/mediascout/internal/ports"
	"github.com/stretchr/testify/require"
)

// fakeWatcher is an in-memory ports.FSWatcher driven by the test.
type fakeWatcher struct {
	events chan ports.RawEvent
	errors chan error

	mu      sync.Mutex
	added   map[string]int
	removed []string
	closed  bool
	lost    sync.Once
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		events: make(chan ports.RawEvent, 256),
		errors: make(chan error, 8),
		added:  make(map[string]int),
	}
}

func (f *fakeWatcher) Add(dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added[dir]++
	return nil
}

func (f *fakeWatcher) Remove(dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, dir)
	return nil
}

func (f *fakeWatcher) Events() <-chan ports.RawEvent { return f.events }
func (f *fakeWatcher) Errors() <-chan error          { return f.errors }

func (f *fakeWatcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeWatcher) emit(path string, op ports.Op) {
	f.events <- ports.RawEvent{Path: path, Op: op}
}

// lose simulates the backend dying underneath the session.
func (f *fakeWatcher) lose() {
	f.lost.Do(func() { close(f.events) })
}

func (f *fakeWatcher) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeWatcher) watched(dir string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.added[dir] > 0
}

// fakeBackend hands out fakeWatchers and remembers them.
type fakeBackend struct {
	mu       sync.Mutex
	watchers []*fakeWatcher
	err      error
}

func (b *fakeBackend) factory() (ports.FSWatcher, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	w := newFakeWatcher()
	b.watchers = append(b.watchers, w)
	return w, nil
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.watchers)
}

func (b *fakeBackend) last() *fakeWatcher {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.watchers) == 0 {
		return nil
	}
	return b.watchers[len(b.watchers)-1]
}

// collector records delivered events.
type collector struct {
	mu     sync.Mutex
	events []ports.Event
}

func (c *collector) add(ev ports.Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) snapshot() []ports.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ports.Event(nil), c.events...)
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// paths returns the sorted paths of events of the given kind.
func (c *collector) paths(kind ports.EventKind) []string {
	var out []string
	for _, ev := range c.snapshot() {
		if ev.Kind == kind {
			out = append(out, ev.Path)
		}
	}
	sort.Strings(out)
	return out
}

func (c *collector) waitLen(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return c.len() >= n }, 2*time.Second, 5*time.Millisecond,
		"expected %d events, got %d", n, c.len())
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDiscoverer returns a Discoverer on a fake backend with a short
// window and a collector subscribed to it.
func newTestDiscoverer(t *testing.T, window time.Duration) (*Discoverer, *fakeBackend, *collector) {
	t.Helper()
	b := &fakeBackend{}
	d := New(
		WithWatcherFactory(b.factory),
		WithDebounce(window),
		WithLogger(quietLogger()),
		WithScanWorkers(2),
	)
	c := &collector{}
	cancel := d.SubscribeFunc(c.add)
	t.Cleanup(func() {
		d.StopDiscovering()
		cancel()
	})
	return d, b, c
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("media"), 0644))
}

func waitWatching(t *testing.T, d *Discoverer) {
	t.Helper()
	require.Eventually(t, func() bool { return d.State() == Watching }, 2*time.Second, 5*time.Millisecond)
}
