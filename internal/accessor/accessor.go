// Package accessor provides the physical read/write/backup primitives for
// one named target. The engine treats accessors as external collaborators
// and memoizes one handle per target per generation.
package accessor

// Accessor reads and writes one target's content as a whole.
type Accessor interface {
	// Read returns the target's current content. ok is false when the
	// target does not exist yet, which is a valid state, not an error.
	Read() (text string, ok bool, err error)

	// Write replaces the target's content in full.
	Write(text string) error
}

// Backuper is the optional backup capability. Accessors that cannot back
// a target up simply do not implement it; the engine's backup ledger
// no-ops in that case.
type Backuper interface {
	// Backup preserves the target's current content before the first
	// write of a generation. Backing up a missing target is a no-op.
	Backup() error
}

// BackupCapability refines Backuper for accessors whose backups can be
// configured off. A Backuper without this interface is always capable;
// one reporting false is skipped entirely, so nothing ever records a
// backup that did not happen.
type BackupCapability interface {
	// Capable reports whether Backup would actually preserve content.
	Capable() bool
}

// Factory constructs the accessor for a target identifier. The engine
// calls it at most once per target per generation.
type Factory func(target string) Accessor
