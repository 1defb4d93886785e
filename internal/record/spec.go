package record

// Spec is the desired-state side of a synchronization pass: one externally
// supplied description that a record may be bound to.
//
// The engine matches specs against freshly loaded records by name (or by a
// pluggable positional matcher), then exposes the binding as a Handle.
type Spec interface {
	// Name is the unique key the spec is matched under.
	Name() string

	// Target is the spec's target override, or "" to use the engine's
	// configured default target.
	Target() string

	// Declared returns the desired value for attr, if one was declared.
	// Handles fall back to this when the record itself has no stored
	// value for an otherwise valid attribute.
	Declared(attr string) (string, bool)

	// DeclaredFields lists the attributes the spec declares values for,
	// in a stable order.
	DeclaredFields() []string
}

// StaticSpec is a plain value implementation of Spec for callers that
// assemble desired state programmatically.
type StaticSpec struct {
	SpecName   string
	SpecTarget string
	Values     map[string]string
}

// Name implements Spec.
func (s *StaticSpec) Name() string { return s.SpecName }

// Target implements Spec.
func (s *StaticSpec) Target() string { return s.SpecTarget }

// Declared implements Spec.
func (s *StaticSpec) Declared(attr string) (string, bool) {
	v, ok := s.Values[attr]
	return v, ok
}

// DeclaredFields implements Spec. Field names are sorted so callers can
// iterate deterministically.
func (s *StaticSpec) DeclaredFields() []string {
	r := &Record{Fields: s.Values}
	return r.SortedFields()
}
