package engine

import (
	"fmt"
	"slices"

	"github.com/flatsync/flatsync/internal/record"
)

// Handle binds one desired-state spec to one record and is the only
// sanctioned way to mutate records. Bind returns handles for matched
// specs; unmatched specs get unbound handles whose record springs into
// existence on Create.
//
// A destroyed record stays in the in-memory generation (so the final
// flush can omit it from the written file); only the next prefetch
// discards it.
type Handle struct {
	eng  *Engine
	spec record.Spec
	rec  *record.Record
}

// NewHandle creates an unbound handle for a spec outside of Bind.
// Used by tests and by callers managing a single resource.
func (e *Engine) NewHandle(spec record.Spec) *Handle {
	return &Handle{eng: e, spec: spec}
}

// Spec returns the bound desired-state spec.
func (h *Handle) Spec() record.Spec {
	return h.spec
}

// Record returns the underlying record, or nil for an unbound handle
// that has not been created yet.
func (h *Handle) Record() *record.Record {
	return h.rec
}

// Exists reports whether the record's intent is present: neither absent
// nor unset.
func (h *Handle) Exists() bool {
	return h.rec != nil && h.rec.Ensure == record.EnsurePresent
}

// Create materializes the record from the spec: every declared desired
// property valid for this format is copied in, intent becomes present,
// and the spec's effective target is marked dirty.
func (h *Handle) Create() error {
	target, err := h.eng.resolveTarget(h.spec)
	if err != nil {
		return err
	}

	if h.rec == nil {
		h.rec = &record.Record{Kind: record.KindData, Name: h.spec.Name()}
	}
	for _, attr := range h.eng.parser.Fields() {
		if v, ok := h.spec.Declared(attr); ok {
			h.rec.Set(attr, v)
		}
	}
	h.rec.Ensure = record.EnsurePresent

	h.eng.dirty.Mark(target)
	h.eng.log.Debug("handle: record created", "spec", h.spec.Name(), "target", target)
	return nil
}

// Destroy sets the record's intent to absent and marks its target dirty.
// The record remains in memory so the next flush rewrites the file
// without it.
func (h *Handle) Destroy() error {
	target := h.targetOrDeclared()
	if target == "" {
		var err error
		if target, err = h.eng.resolveTarget(h.spec); err != nil {
			return err
		}
	}

	if h.rec == nil {
		h.rec = &record.Record{Kind: record.KindData, Name: h.spec.Name()}
	}
	h.rec.Ensure = record.EnsureAbsent

	h.eng.dirty.Mark(target)
	h.eng.log.Debug("handle: record destroyed", "spec", h.spec.Name(), "target", target)
	return nil
}

// Get returns the current value of attr. ok is false when the attribute
// is structurally invalid for this format, which lets callers report
// "nothing to change" for fields that do not apply. For a valid attribute
// with no stored value, the spec's declared value is the fallback.
func (h *Handle) Get(attr string) (value string, ok bool) {
	if !h.validAttr(attr) {
		return "", false
	}
	if h.rec != nil {
		if v, stored := h.rec.Get(attr); stored {
			return v, true
		}
	}
	if v, declared := h.spec.Declared(attr); declared {
		return v, true
	}
	return "", true
}

// Set stores a value on the record and marks both the record's own
// target and the spec's declared target dirty when they differ - a move
// between files must rewrite both.
func (h *Handle) Set(attr, value string) error {
	if !h.validAttr(attr) {
		return NewInternalError(fmt.Sprintf("attribute %q not valid for this format", attr), nil)
	}
	if h.rec == nil {
		return NewInternalError(fmt.Sprintf("set %q on a record that was never created", attr), nil)
	}

	h.rec.Set(attr, value)

	if h.rec.Target != "" {
		h.eng.dirty.Mark(h.rec.Target)
	}
	if declared, err := h.eng.resolveTarget(h.spec); err == nil && declared != h.rec.Target {
		h.eng.dirty.Mark(declared)
	}
	return nil
}

// Flush pushes this handle's pending state to disk. A record with no
// target yet is lazily assigned the spec's effective target, missing key
// attributes are copied out of the spec, and the store-level flush then
// drains every dirty target.
func (h *Handle) Flush() error {
	if h.rec == nil {
		return nil
	}

	if h.rec.Target == "" {
		target, err := h.eng.resolveTarget(h.spec)
		if err != nil {
			return err
		}
		h.rec.Target = target
		h.eng.dirty.Mark(target)
	}

	if h.rec.Name == "" {
		h.rec.Name = h.spec.Name()
	}
	if key := h.eng.parser.Key(); key != "" {
		if _, ok := h.rec.Get(key); !ok {
			h.rec.Set(key, h.spec.Name())
		}
	}

	return h.eng.Flush(h.rec)
}

// validAttr reports whether attr is part of the parser's field schema.
func (h *Handle) validAttr(attr string) bool {
	return slices.Contains(h.eng.parser.Fields(), attr)
}

// targetOrDeclared returns the record's assigned target, if any.
func (h *Handle) targetOrDeclared() string {
	if h.rec != nil {
		return h.rec.Target
	}
	return ""
}
