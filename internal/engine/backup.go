package engine

import (
	"github.com/flatsync/flatsync/internal/accessor"
)

// backupLedger enforces at-most-once backup per (target, generation).
// The first write of a generation preserves the previous on-disk content;
// every later flush in the same generation builds on content that is
// already backed up, so re-backing-up would only clobber the original.
type backupLedger struct {
	done map[backupKey]bool
}

type backupKey struct {
	target     string
	generation string
}

func newBackupLedger() *backupLedger {
	return &backupLedger{done: make(map[backupKey]bool)}
}

// BackupOnce backs a target up through its accessor if the accessor has
// the capability and this (target, generation) pair has not been backed
// up yet. Returns whether the underlying backup primitive ran, so flush
// logs and journal rows only claim backups that actually happened.
func (l *backupLedger) BackupOnce(target, generation string, acc accessor.Accessor) (bool, error) {
	b, ok := acc.(accessor.Backuper)
	if !ok {
		return false, nil
	}
	if c, ok := acc.(accessor.BackupCapability); ok && !c.Capable() {
		return false, nil
	}

	key := backupKey{target: target, generation: generation}
	if l.done[key] {
		return false, nil
	}

	if err := b.Backup(); err != nil {
		return false, NewAccessError(target, "backup", err)
	}
	l.done[key] = true
	return true, nil
}

// Reset discards the ledger. Entries for discarded generations can never
// match again (a fresh token is generated per prefetch), so this only
// keeps the map from growing across many prefetch cycles.
func (l *backupLedger) Reset() {
	l.done = make(map[backupKey]bool)
}
