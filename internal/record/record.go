package record

import (
	"fmt"
	"slices"
	"strings"
)

// Kind tags a record variant. Parsers classify every line they produce
// with a kind; the engine only distinguishes data kinds from non-data
// kinds (comments, blank lines) via the parser's NonData predicate.
type Kind string

const (
	// KindData is a parseable entry carrying field values.
	KindData Kind = "data"

	// KindComment is a comment line preserved verbatim.
	KindComment Kind = "comment"

	// KindBlank is an empty or whitespace-only line preserved verbatim.
	KindBlank Kind = "blank"
)

// Ensure expresses a record's desired presence in its target file.
type Ensure int

const (
	// EnsureUnset means no intent has been recorded yet. A handle whose
	// record is unset does not Exist and has never been created.
	EnsureUnset Ensure = iota

	// EnsurePresent means the record should appear in the written file.
	EnsurePresent

	// EnsureAbsent means the record stays in memory but is omitted from
	// the next write, removing it from the file.
	EnsureAbsent
)

// String returns a human-readable representation of the intent.
func (e Ensure) String() string {
	switch e {
	case EnsurePresent:
		return "present"
	case EnsureAbsent:
		return "absent"
	default:
		return "unset"
	}
}

// Record is one structured entry belonging to exactly one target.
//
// Data records carry a Fields map; comment and blank records carry only
// their raw Text. Name is the unique key within the target and is empty
// for positional (unnamed) record kinds.
//
// OnDisk is transient bookkeeping: false until the record has been loaded
// from or included in a write to storage.
type Record struct {
	Name   string
	Target string
	Kind   Kind
	Ensure Ensure
	OnDisk bool

	// Fields maps attribute name to value for data records.
	// Multi-valued attributes are carried space-joined; the parser owns
	// that encoding.
	Fields map[string]string

	// Text is the raw line for comment and blank records.
	Text string
}

// New creates a data record with the given name and fields.
// The fields map is copied to keep the record's ownership exclusive.
func New(name string, fields map[string]string) *Record {
	r := &Record{
		Name:   name,
		Kind:   KindData,
		Fields: make(map[string]string, len(fields)),
	}
	for k, v := range fields {
		r.Fields[k] = v
	}
	return r
}

// Get returns the value stored for attr, or "" when unset.
func (r *Record) Get(attr string) (string, bool) {
	if r.Fields == nil {
		return "", false
	}
	v, ok := r.Fields[attr]
	return v, ok
}

// Set stores a value for attr, allocating the field map on first use.
func (r *Record) Set(attr, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[attr] = value
}

// SortedFields returns the record's field names in ascending order.
// Used wherever deterministic iteration matters (serialization, logs).
func (r *Record) SortedFields() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// String describes the record for logs and error messages.
func (r *Record) String() string {
	if r.Kind != KindData {
		return fmt.Sprintf("%s(%q)", r.Kind, strings.TrimRight(r.Text, "\n"))
	}
	if r.Name != "" {
		return fmt.Sprintf("data(%s)", r.Name)
	}
	return "data(unnamed)"
}
