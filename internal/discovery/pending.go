package discovery

import (
	"sort"

	"github.com/corey/mediascout/internal/ports"
)

// change is the coalesced outcome for one path at the end of a window.
type change struct {
	Path    string
	Present bool // last raw op left something at Path
}

// pendingSet accumulates raw events during one debounce window, keyed by
// path, last kind wins. Owned by the session
// worker; not safe for concurrent use.
type pendingSet struct {
	ops map[string]ports.Op
}

func newPendingSet() *pendingSet {
	return &pendingSet{ops: make(map[string]ports.Op)}
}

// Record notes op for path, replacing any earlier op in this window.
func (p *pendingSet) Record(path string, op ports.Op) {
	p.ops[path] = op
}

// Len returns the number of distinct paths pending.
func (p *pendingSet) Len() int {
	return len(p.ops)
}

// Drain coalesces the window into per-path changes sorted by path and
// empties the set.
func (p *pendingSet) Drain() []change {
	if len(p.ops) == 0 {
		return nil
	}
	changes := make([]change, 0, len(p.ops))
	for path, op := range p.ops {
		changes = append(changes, change{
			Path:    path,
			Present: op == ports.OpCreated || op == ports.OpModified,
		})
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	p.Clear()
	return changes
}

// Clear discards everything pending.
func (p *pendingSet) Clear() {
	clear(p.ops)
}
