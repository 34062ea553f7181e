package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/corey/mediascout/internal/ports"
)

// session is one start→stop lifetime of a watch. Everything except dirs is
// owned by the worker goroutine running run.
type session struct {
	d          *Discoverer
	id         string
	root       string
	rootID     rootID
	statRoot   func(string) (rootID, error)
	checkEvery time.Duration
	fs         ports.FSWatcher
	matcher    ports.Matcher
	window     time.Duration
	workers    int
	log        *slog.Logger

	pending *pendingSet
	known   map[string]struct{} // paths reported Added and not yet Removed
	timer   *time.Timer
	timerC  <-chan time.Time

	dirsMu sync.Mutex // addDir runs on scan workers
	dirs   map[string]struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

func (s *session) run(ctx context.Context) {
	defer close(s.done)

	err := s.watch(ctx)

	s.stopTimer()
	s.pending.Clear()
	if cerr := s.fs.Close(); cerr != nil {
		s.log.Debug("close backend", "error", cerr)
	}

	if err == nil || ctx.Err() != nil {
		return
	}
	s.log.Warn("discovery ended", "error", err)
	s.d.sessionEnded(s, err)
}

// watch performs the baseline scan and then processes incremental events
// until ctx is cancelled or the watch is lost.
func (s *session) watch(ctx context.Context) error {
	started := time.Now()
	files, err := scanTree(ctx, s.root, s.matcher, s.workers, s.addDir)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return classifyBackendErr(err)
	}

	baseline := make([]ports.Event, 0, len(files))
	for _, f := range files {
		s.known[f] = struct{}{}
		baseline = append(baseline, s.event(ports.Added, f))
	}
	s.d.deliver(ctx, baseline)
	if ctx.Err() != nil {
		return nil
	}
	s.d.promote(s)
	s.log.Info("baseline scan complete", "files", len(files), "dirs", s.dirCount(), "elapsed", time.Since(started).Round(time.Millisecond))

	events := s.fs.Events()
	errs := s.fs.Errors()
	check := time.NewTicker(s.checkEvery)
	defer check.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("%w: event stream closed", ErrWatchLost)
			}
			if err := s.handleRaw(ctx, ev); err != nil {
				return err
			}

		case err, ok := <-errs:
			if !ok {
				return fmt.Errorf("%w: error stream closed", ErrWatchLost)
			}
			if err := s.handleBackendErr(ctx, err); err != nil {
				return err
			}

		case <-check.C:
			if err := s.checkRoot(); err != nil {
				return err
			}

		case <-s.timerC:
			s.timer = nil
			s.timerC = nil
			if err := s.checkRoot(); err != nil {
				return err
			}
			s.flush(ctx)
		}
	}
}

// handleRaw folds one raw event into the pending window.
func (s *session) handleRaw(ctx context.Context, ev ports.RawEvent) error {
	if ev.Path == s.root && (ev.Op == ports.OpRemoved || ev.Op == ports.OpRenamed) {
		return fmt.Errorf("%w: root %s", ErrWatchLost, ev.Op)
	}

	switch ev.Op {
	case ports.OpCreated:
		if info, err := os.Lstat(ev.Path); err == nil && info.IsDir() {
			s.enterDir(ctx, ev.Path)
			return nil
		}
	case ports.OpRemoved, ports.OpRenamed:
		s.forgetDir(ev.Path)
	}

	s.pending.Record(ev.Path, ev.Op)
	s.armTimer()
	return nil
}

// checkRoot fails when the root no longer resolves to the directory the
// session started on. The backend drops unmount notifications.
func (s *session) checkRoot() error {
	id, err := s.statRoot(s.root)
	if err != nil {
		return fmt.Errorf("%w: root unreachable: %w", ErrWatchLost, err)
	}
	if id != s.rootID {
		return fmt.Errorf("%w: root unmounted", ErrWatchLost)
	}
	return nil
}

// enterDir starts watching a directory that appeared after the baseline
// and records its contents as created: files may have landed before the
// watch on the new directory was live.
func (s *session) enterDir(ctx context.Context, dir string) {
	if s.matcher.SkipDir(dir) {
		return
	}
	files, err := scanTree(ctx, dir, s.matcher, s.workers, s.addDir)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn("scan new directory", "dir", dir, "error", err)
		}
		return
	}
	for _, f := range files {
		s.pending.Record(f, ports.OpCreated)
	}
	s.armTimer()
}

func (s *session) handleBackendErr(ctx context.Context, err error) error {
	if errors.Is(err, ports.ErrOverflow) {
		s.log.Warn("event queue overflow, rescanning")
		return s.resync(ctx)
	}
	s.log.Warn("watch backend error", "error", err)
	return nil
}

// resync rescans the tree after dropped events and reconciles it with the
// known set.
func (s *session) resync(ctx context.Context) error {
	files, err := scanTree(ctx, s.root, s.matcher, s.workers, s.addDir)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: rescan: %w", ErrWatchLost, err)
	}
	present := make(map[string]struct{}, len(files))
	var events []ports.Event
	for _, f := range files {
		present[f] = struct{}{}
		if _, ok := s.known[f]; !ok {
			s.known[f] = struct{}{}
			events = append(events, s.event(ports.Added, f))
		}
	}
	for p := range s.known {
		if _, ok := present[p]; !ok {
			delete(s.known, p)
			events = append(events, s.event(ports.Removed, p))
		}
	}
	sortEvents(events)
	s.d.deliver(ctx, events)
	return nil
}

// flush coalesces the pending window and delivers the net result.
func (s *session) flush(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	var events []ports.Event
	for _, c := range s.pending.Drain() {
		if c.Present {
			info, err := os.Lstat(c.Path)
			if err == nil && info.IsDir() {
				continue
			}
			if err == nil && info.Mode().IsRegular() {
				if _, ok := s.known[c.Path]; !ok && s.matcher.Match(c.Path) {
					s.known[c.Path] = struct{}{}
					events = append(events, s.event(ports.Added, c.Path))
				}
				continue
			}
			// Gone again, or no longer a regular file: treat as absent.
		}
		events = append(events, s.removeUnder(c.Path)...)
	}
	sortEvents(events)
	s.d.deliver(ctx, events)
}

// removeUnder forgets path, or every known file below it when path was a
// directory, and returns the matching Removed events.
func (s *session) removeUnder(path string) []ports.Event {
	if _, ok := s.known[path]; ok {
		delete(s.known, path)
		return []ports.Event{s.event(ports.Removed, path)}
	}
	prefix := path + string(filepath.Separator)
	var events []ports.Event
	for p := range s.known {
		if strings.HasPrefix(p, prefix) {
			delete(s.known, p)
			events = append(events, s.event(ports.Removed, p))
		}
	}
	return events
}

func (s *session) armTimer() {
	if s.timer != nil || s.pending.Len() == 0 {
		return
	}
	s.timer = time.NewTimer(s.window)
	s.timerC = s.timer.C
}

func (s *session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
		s.timerC = nil
	}
}

func (s *session) addDir(dir string) error {
	if err := s.fs.Add(dir); err != nil {
		return err
	}
	s.dirsMu.Lock()
	s.dirs[dir] = struct{}{}
	s.dirsMu.Unlock()
	return nil
}

// forgetDir drops watches on dir and everything below it. A directory
// moved out of the tree keeps its inotify watch, which would otherwise
// report changes under the stale path.
func (s *session) forgetDir(dir string) {
	s.dirsMu.Lock()
	defer s.dirsMu.Unlock()
	// Parents are registered before children: an unwatched dir has no
	// watched descendants.
	if _, ok := s.dirs[dir]; !ok {
		return
	}
	prefix := dir + string(filepath.Separator)
	for d := range s.dirs {
		if d == dir || strings.HasPrefix(d, prefix) {
			if err := s.fs.Remove(d); err != nil {
				s.log.Debug("unwatch", "dir", d, "error", err)
			}
			delete(s.dirs, d)
		}
	}
}

func (s *session) dirCount() int {
	s.dirsMu.Lock()
	defer s.dirsMu.Unlock()
	return len(s.dirs)
}

func (s *session) event(kind ports.EventKind, path string) ports.Event {
	return ports.Event{
		Kind:    kind,
		Path:    path,
		Root:    s.root,
		Session: s.id,
		Time:    time.Now(),
	}
}

func sortEvents(events []ports.Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].Path < events[j].Path
	})
}
