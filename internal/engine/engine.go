package engine

import (
	"log/slog"
	"time"

	"github.com/flatsync/flatsync/internal/accessor"
	"github.com/flatsync/flatsync/internal/parser"
	"github.com/flatsync/flatsync/internal/record"
)

// Matcher is the optional positional-matching capability for record
// kinds without a unique name. It is offered each unmatched data record
// together with the specs still in circulation and returns the spec the
// record belongs to, or nil.
//
// When several specs are equally plausible the matcher should return the
// first match in iteration order; that is the engine's documented default
// tie-break, and a custom matcher is the customization point for anything
// cleverer.
type Matcher func(rec *record.Record, unmatched []record.Spec) record.Spec

// FlushEntry describes one successful target write, for the audit journal.
type FlushEntry struct {
	Target     string
	Generation string
	Records    int
	Bytes      int
	BackedUp   bool
	WrittenAt  time.Time
}

// Journal receives a FlushEntry after every successful target write.
// Journaling is best-effort: a journal failure is logged, not propagated,
// so audit trouble never blocks a completed write.
type Journal interface {
	RecordFlush(entry FlushEntry) error
}

// Engine is the record/target synchronization core. All of its state
// (generation list, dirty set, backup ledger, accessor cache) is scoped
// to one Engine value; PrefetchAll resets the generation-scoped parts
// wholesale.
//
// The engine is single-threaded: one pass per use, no internal
// parallelism, and no cancellation semantics on the underlying file
// operations.
type Engine struct {
	parser        parser.Parser
	factory       accessor.Factory
	defaultTarget string
	matcher       Matcher
	tokens        TokenGenerator
	now           func() time.Time
	log           *slog.Logger
	journal       Journal

	generation string
	records    []*record.Record
	accessors  map[string]accessor.Accessor
	dirty      *dirtySet
	backups    *backupLedger
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithMatcher supplies the positional matcher capability. Resolved once
// at construction, never probed per call.
func WithMatcher(m Matcher) Option {
	return func(e *Engine) { e.matcher = m }
}

// WithTokenGenerator overrides the generation token source (tests).
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) { e.tokens = g }
}

// WithNow overrides the clock used for header timestamps (tests).
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine's logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithJournal attaches a flush audit journal.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// New creates an Engine for one parser/accessor pair. defaultTarget is
// the target used by specs without an override; it may be empty, but
// prefetch and flush then fail with a CONFIG error as soon as a default
// is actually needed.
func New(p parser.Parser, factory accessor.Factory, defaultTarget string, opts ...Option) *Engine {
	e := &Engine{
		parser:        p,
		factory:       factory,
		defaultTarget: defaultTarget,
		tokens:        UUIDv7Generator{},
		now:           time.Now,
		log:           slog.Default(),
		accessors:     make(map[string]accessor.Accessor),
		dirty:         newDirtySet(),
		backups:       newBackupLedger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generation returns the current generation token, or "" before the
// first prefetch.
func (e *Engine) Generation() string {
	return e.generation
}

// Records returns the current generation's record list, in load order.
// Callers must not reorder it; record mutation goes through handles.
func (e *Engine) Records() []*record.Record {
	return e.records
}

// RecordsFor filters the current generation by target, preserving file
// order. Used by the flusher to collect a target's write set.
func (e *Engine) RecordsFor(target string) []*record.Record {
	var out []*record.Record
	for _, rec := range e.records {
		if rec.Target == target {
			out = append(out, rec)
		}
	}
	return out
}

// FindByName returns the first record in the current generation with the
// given name, or nil. Detects whether a desired spec already has an
// on-disk record.
func (e *Engine) FindByName(name string) *record.Record {
	if name == "" {
		return nil
	}
	for _, rec := range e.records {
		if rec.Name == name {
			return rec
		}
	}
	return nil
}

// add appends a record to the current generation if it is not already a
// member. Membership is identity, not equality: two distinct records may
// carry the same name while one of them is being replaced.
func (e *Engine) add(rec *record.Record) {
	for _, existing := range e.records {
		if existing == rec {
			return
		}
	}
	e.records = append(e.records, rec)
}

// Dirty returns the targets currently awaiting flush, sorted.
func (e *Engine) Dirty() []string {
	return e.dirty.Sorted()
}

// MarkModified records that a target has pending unwritten changes.
// Idempotent.
func (e *Engine) MarkModified(target string) {
	e.dirty.Mark(target)
}

// resolveTarget returns a spec's effective target: its own override, or
// the engine default.
func (e *Engine) resolveTarget(spec record.Spec) (string, error) {
	if t := spec.Target(); t != "" {
		return t, nil
	}
	if e.defaultTarget == "" {
		return "", NewConfigError("no default target configured")
	}
	return e.defaultTarget, nil
}
