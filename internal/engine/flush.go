package engine

import (
	"errors"

	"github.com/flatsync/flatsync/internal/record"
)

// Flush ensures the triggering record is on the written-set path, then
// drains the entire dirty set.
//
// A triggering record not yet on disk (nil is allowed for a bare drain)
// is stamped on-disk, appended to the generation, and its target marked
// modified; a record already on the path triggers no marking of its own.
// Every currently dirty target is then written - not just the trigger's
// own - in ascending lexical order: multiple handles commonly share one
// target file, and each write must reflect the union of all pending
// changes in one pass rather than repeated partial rewrites.
//
// A target leaves the dirty set only after its write succeeds. Failed
// targets stay dirty for a later retry; every dirty target is still
// attempted, and the joined error is returned.
func (e *Engine) Flush(rec *record.Record) error {
	if rec != nil {
		if rec.Target == "" {
			return NewInternalError("flush of record with no target", nil)
		}
		if !rec.OnDisk {
			e.add(rec)
			rec.OnDisk = true
			e.dirty.Mark(rec.Target)
		}
	}

	if e.dirty.Len() == 0 {
		return nil
	}

	var errs []error
	for _, target := range e.dirty.Sorted() {
		if err := e.writeTarget(target); err != nil {
			e.log.Error("flush: target write failed", "target", target, "error", err)
			errs = append(errs, err)
			continue
		}
		e.dirty.Clear(target)
	}
	return errors.Join(errs...)
}

// writeTarget rewrites one target: backup once per generation, collect
// its records minus the ensure-absent ones, serialize, prepend a fresh
// header, write through the accessor.
func (e *Engine) writeTarget(target string) error {
	acc := e.AccessorFor(target)

	backedUp, err := e.backups.BackupOnce(target, e.generation, acc)
	if err != nil {
		return err
	}

	var written []*record.Record
	for _, r := range e.RecordsFor(target) {
		if r.Ensure == record.EnsureAbsent {
			continue
		}
		written = append(written, r)
	}

	body, err := e.parser.Serialize(written)
	if err != nil {
		return NewInternalError("serialize failed for target "+target, err)
	}

	text := e.parser.Header(e.now()) + body
	if err := acc.Write(text); err != nil {
		return NewAccessError(target, "write", err)
	}

	for _, r := range written {
		r.OnDisk = true
	}

	e.log.Info("flush: target written",
		"target", target,
		"records", len(written),
		"bytes", len(text),
		"backed_up", backedUp,
	)

	if e.journal != nil {
		entry := FlushEntry{
			Target:     target,
			Generation: e.generation,
			Records:    len(written),
			Bytes:      len(text),
			BackedUp:   backedUp,
			WrittenAt:  e.now(),
		}
		if err := e.journal.RecordFlush(entry); err != nil {
			e.log.Warn("flush: journal write failed", "target", target, "error", err)
		}
	}

	return nil
}
