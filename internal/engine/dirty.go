package engine

import "slices"

// dirtySet is the deduplicated set of targets with pending unwritten
// changes. A target enters when a record bound to it is created, mutated,
// or marked absent, and leaves only after a successful write.
type dirtySet struct {
	targets map[string]bool
}

func newDirtySet() *dirtySet {
	return &dirtySet{targets: make(map[string]bool)}
}

// Mark inserts a target. Idempotent.
func (d *dirtySet) Mark(target string) {
	d.targets[target] = true
}

// Clear removes a target after a successful write.
func (d *dirtySet) Clear(target string) {
	delete(d.targets, target)
}

// Has reports whether a target is pending.
func (d *dirtySet) Has(target string) bool {
	return d.targets[target]
}

// Len returns the number of pending targets.
func (d *dirtySet) Len() int {
	return len(d.targets)
}

// Sorted returns the pending targets in ascending lexical order, the
// processing order the flusher relies on for reproducible writes.
func (d *dirtySet) Sorted() []string {
	out := make([]string, 0, len(d.targets))
	for t := range d.targets {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Reset discards all pending targets. Used when a new generation
// supersedes unwritten changes.
func (d *dirtySet) Reset() {
	d.targets = make(map[string]bool)
}
