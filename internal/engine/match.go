package engine

import (
	"slices"

	"github.com/flatsync/flatsync/internal/record"
)

// Bind associates the current generation's records with desired-state
// specs and returns one handle per spec, in the order given.
//
// For each data record, in file order:
//  1. A record whose name exactly matches an unbound spec binds directly;
//     that spec leaves circulation.
//  2. Otherwise - the record is unnamed, or its name matches no unbound
//     spec - a configured positional matcher is offered the record and
//     the remaining unbound specs. A match binds, assigns the spec's
//     name onto the record, and removes the spec from circulation.
//  3. Unmatched records stay in the store as unmanaged on-disk content,
//     preserved verbatim on the next flush.
//
// Specs that match no record come back as unbound handles (fresh create
// path). A spec is never bound twice; matching is order-preserving over
// records, so repeated passes over the same generation bind identically.
func (e *Engine) Bind(specs []record.Spec) []*Handle {
	handles := make([]*Handle, len(specs))
	for i, spec := range specs {
		handles[i] = &Handle{eng: e, spec: spec}
	}

	remaining := slices.Clone(handles)

	for _, rec := range e.records {
		if len(remaining) == 0 {
			break
		}
		if e.parser.NonData(rec.Kind) {
			continue
		}

		var bound *Handle
		if rec.Name != "" {
			bound = takeByName(&remaining, rec.Name)
		}
		if bound == nil && e.matcher != nil {
			bound = takeByMatcher(&remaining, e.matcher, rec)
			if bound != nil {
				rec.Name = bound.spec.Name()
			}
		}

		if bound != nil {
			bound.rec = rec
			e.log.Debug("bind: spec matched on-disk record",
				"spec", bound.spec.Name(), "target", rec.Target)
		}
	}

	return handles
}

// takeByName removes and returns the handle whose spec has the given
// name, or nil.
func takeByName(remaining *[]*Handle, name string) *Handle {
	for i, h := range *remaining {
		if h.spec.Name() == name {
			*remaining = slices.Delete(*remaining, i, i+1)
			return h
		}
	}
	return nil
}

// takeByMatcher offers a record to the positional matcher and removes
// the handle of whichever spec it picks, or nil.
func takeByMatcher(remaining *[]*Handle, m Matcher, rec *record.Record) *Handle {
	unmatched := make([]record.Spec, len(*remaining))
	for i, h := range *remaining {
		unmatched[i] = h.spec
	}

	pick := m(rec, unmatched)
	if pick == nil {
		return nil
	}
	for i, h := range *remaining {
		if h.spec == pick {
			*remaining = slices.Delete(*remaining, i, i+1)
			return h
		}
	}
	return nil
}
