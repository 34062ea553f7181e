// Package fsnotify implements the ports.FSWatcher interface using github.com/fsnotify/fsnotify.
// It watches individual directories and translates fsnotify operations into
// ports.RawEvent values. Recursion and debouncing belong to the discoverer.
package fsnotify

import (
	"errors"
	"fmt"
	"sync"

	"github.com/corey/mediascout/internal/ports"
	"github.com/fsnotify/fsnotify"
)

// DefaultBuffer is the event buffer size used by NewWatcher. A long copy
// into a watched tree produces bursts well beyond the unbuffered default.
const DefaultBuffer = 4096

// Watcher implements ports.FSWatcher using fsnotify.
type Watcher struct {
	fw     *fsnotify.Watcher
	events chan ports.RawEvent
	errors chan error

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// NewWatcher creates a watcher with DefaultBuffer.
func NewWatcher() (*Watcher, error) {
	return NewBufferedWatcher(DefaultBuffer)
}

// NewBufferedWatcher creates a watcher whose backend queue holds size events.
func NewBufferedWatcher(size uint) (*Watcher, error) {
	fw, err := fsnotify.NewBufferedWatcher(size)
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fw:     fw,
		events: make(chan ports.RawEvent, 256),
		errors: make(chan error, 8),
		done:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Factory returns a ports.WatcherFactory producing buffered watchers.
func Factory(size uint) ports.WatcherFactory {
	return func() (ports.FSWatcher, error) {
		return NewBufferedWatcher(size)
	}
}

// Add starts watching dir (non-recursive).
func (w *Watcher) Add(dir string) error {
	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

// Remove stops watching dir.
func (w *Watcher) Remove(dir string) error {
	err := w.fw.Remove(dir)
	if err == nil || errors.Is(err, fsnotify.ErrNonExistentWatch) || errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return fmt.Errorf("unwatch %s: %w", dir, err)
}

// Events returns the raw event channel. Closed after Close.
func (w *Watcher) Events() <-chan ports.RawEvent {
	return w.events
}

// Errors returns the error channel. Closed after Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close releases the inotify/kqueue handle and waits for the forwarding
// goroutine to exit. Safe to call multiple times.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.fw.Close()
		w.wg.Wait()
	})
	return w.closeErr
}

// loop is the only sender on events and errors, so it closes them on exit.
// Consumers see closed channels both after Close and when the backend dies.
func (w *Watcher) loop() {
	defer w.wg.Done()
	defer close(w.errors)
	defer close(w.events)

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			raw, ok := convertEvent(event)
			if !ok {
				continue
			}
			select {
			case w.events <- raw:
			case <-w.done:
				return
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				err = fmt.Errorf("%w: %v", ports.ErrOverflow, err)
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// convertEvent maps an fsnotify event to a RawEvent. Chmod-only events are
// dropped: permission flips do not change the media set.
func convertEvent(event fsnotify.Event) (ports.RawEvent, bool) {
	var op ports.Op
	switch {
	case event.Has(fsnotify.Remove):
		op = ports.OpRemoved
	case event.Has(fsnotify.Rename):
		op = ports.OpRenamed
	case event.Has(fsnotify.Create):
		op = ports.OpCreated
	case event.Has(fsnotify.Write):
		op = ports.OpModified
	default:
		return ports.RawEvent{}, false
	}
	return ports.RawEvent{Path: event.Name, Op: op}, true
}
