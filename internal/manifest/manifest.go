// Package manifest loads desired-state specifications from YAML or CUE
// files and turns them into specs the engine can bind.
package manifest

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/flatsync/flatsync/internal/parser"
	"github.com/flatsync/flatsync/internal/record"
)

// Manifest is one desired-state document: the target format, the default
// target file, and the records to converge.
type Manifest struct {
	Format        string         `yaml:"format" json:"format"`
	DefaultTarget string         `yaml:"default_target" json:"default_target"`
	KeyValue      *KeyValueConf  `yaml:"keyvalue,omitempty" json:"keyvalue,omitempty"`
	Tabular       *TabularConf   `yaml:"tabular,omitempty" json:"tabular,omitempty"`
	Records       []*SpecDef     `yaml:"records" json:"records"`
}

// KeyValueConf configures the keyvalue format.
type KeyValueConf struct {
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	Separator string `yaml:"separator,omitempty" json:"separator,omitempty"`
}

// TabularConf configures a custom tabular format.
type TabularConf struct {
	Name     string   `yaml:"name" json:"name"`
	Key      string   `yaml:"key,omitempty" json:"key,omitempty"`
	Fields   []string `yaml:"fields" json:"fields"`
	JoinRest bool     `yaml:"join_rest,omitempty" json:"join_rest,omitempty"`
}

// SpecDef is one desired record. It implements record.Spec.
type SpecDef struct {
	RecordName string            `yaml:"name" json:"name"`
	Ensure     string            `yaml:"ensure,omitempty" json:"ensure,omitempty"`
	Override   string            `yaml:"target,omitempty" json:"target,omitempty"`
	Fields     map[string]string `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Name implements record.Spec.
func (s *SpecDef) Name() string { return s.RecordName }

// Target implements record.Spec.
func (s *SpecDef) Target() string { return s.Override }

// Declared implements record.Spec.
func (s *SpecDef) Declared(attr string) (string, bool) {
	v, ok := s.Fields[attr]
	return v, ok
}

// DeclaredFields implements record.Spec, sorted for determinism.
func (s *SpecDef) DeclaredFields() []string {
	fields := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		fields = append(fields, k)
	}
	slices.Sort(fields)
	return fields
}

// Absent reports whether the spec asks for removal.
func (s *SpecDef) Absent() bool { return s.Ensure == "absent" }

// Specs returns the manifest's records as engine-consumable specs.
func (m *Manifest) Specs() []record.Spec {
	specs := make([]record.Spec, len(m.Records))
	for i, def := range m.Records {
		specs[i] = def
	}
	return specs
}

// Parser constructs the parser the manifest's format names.
func (m *Manifest) Parser() (parser.Parser, error) {
	switch m.Format {
	case "hosts":
		return parser.NewHosts(), nil

	case "keyvalue":
		name, sep := "keyvalue", "="
		if m.KeyValue != nil {
			if m.KeyValue.Name != "" {
				name = m.KeyValue.Name
			}
			if m.KeyValue.Separator != "" {
				sep = m.KeyValue.Separator
			}
		}
		return parser.NewKeyValue(name, sep), nil

	case "tabular":
		if m.Tabular == nil {
			return nil, fmt.Errorf("format %q requires a tabular section", m.Format)
		}
		var opts []parser.TabularOption
		if m.Tabular.JoinRest {
			opts = append(opts, parser.WithJoinRest())
		}
		return parser.NewTabular(m.Tabular.Name, m.Tabular.Key, m.Tabular.Fields, opts...), nil

	default:
		return nil, fmt.Errorf("unknown format %q", m.Format)
	}
}

// Validate checks structural constraints shared by both loaders: a known
// format, a default target, and unique non-empty record names.
func (m *Manifest) Validate() error {
	if m.Format == "" {
		return fmt.Errorf("manifest: format is required")
	}
	if m.DefaultTarget == "" {
		return fmt.Errorf("manifest: default_target is required")
	}
	if _, err := m.Parser(); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}

	seen := make(map[string]bool, len(m.Records))
	for i, def := range m.Records {
		if def.RecordName == "" {
			return fmt.Errorf("manifest: record %d has no name", i)
		}
		if seen[def.RecordName] {
			return fmt.Errorf("manifest: duplicate record name %q", def.RecordName)
		}
		seen[def.RecordName] = true

		switch def.Ensure {
		case "", "present", "absent":
		default:
			return fmt.Errorf("manifest: record %q: ensure must be \"present\" or \"absent\", got %q",
				def.RecordName, def.Ensure)
		}
	}
	return nil
}

// Load reads a manifest file, dispatching on extension: .cue loads via
// the CUE schema, anything else is treated as YAML.
func Load(path string) (*Manifest, error) {
	if filepath.Ext(path) == ".cue" {
		return LoadCUE(path)
	}
	return LoadYAML(path)
}
