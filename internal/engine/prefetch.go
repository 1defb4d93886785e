package engine

import (
	"errors"

	"github.com/flatsync/flatsync/internal/record"
)

// PrefetchTarget loads one target's records through the accessor and
// parser. An absent or empty target yields an empty sequence, not an
// error: "file does not exist yet" is a valid state. Every returned
// record is stamped on-disk, present, and bound to the target.
func (e *Engine) PrefetchTarget(target string) ([]*record.Record, error) {
	acc := e.AccessorFor(target)

	text, ok, err := acc.Read()
	if err != nil {
		return nil, NewAccessError(target, "read", err)
	}
	if !ok || text == "" {
		e.log.Debug("prefetch: target empty or absent", "target", target)
		return nil, nil
	}

	records, err := e.parser.Parse(text)
	if err != nil {
		return nil, NewParseError(target, err)
	}
	if records == nil {
		// A parser returning nil for non-empty content is a contract
		// violation, not an empty file.
		return nil, NewInternalError("parser returned no records for non-empty content", nil)
	}

	for _, rec := range records {
		rec.Target = target
		rec.OnDisk = true
		rec.Ensure = record.EnsurePresent
	}

	e.log.Debug("prefetch: target loaded", "target", target, "records", len(records))
	return records, nil
}

// PrefetchAll replaces the engine's record set wholesale with the
// contents of every known target. The previous generation and its backup
// bookkeeping are discarded, along with any unwritten changes (logged as
// a warning when that happens).
//
// Per-target failures are not swallowed: every target is attempted, and
// the joined error is returned so the caller never mistakes a partially
// populated generation for a complete one.
func (e *Engine) PrefetchAll(specs []record.Spec) error {
	targets, err := e.Targets(specs)
	if err != nil {
		return err
	}

	if e.dirty.Len() > 0 {
		e.log.Warn("prefetch: discarding unwritten changes", "targets", e.dirty.Sorted())
	}

	e.generation = e.tokens.Generate()
	e.records = nil
	e.dirty.Reset()
	e.backups.Reset()

	var errs []error
	for _, target := range targets {
		records, err := e.PrefetchTarget(target)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		e.records = append(e.records, records...)
	}

	e.log.Info("prefetch complete",
		"generation", e.generation,
		"targets", len(targets),
		"records", len(e.records),
		"failures", len(errs),
	)
	return errors.Join(errs...)
}
