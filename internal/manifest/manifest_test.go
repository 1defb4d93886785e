package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlManifest = `
format: hosts
default_target: /etc/hosts
records:
  - name: web1
    fields:
      ip: 192.0.2.10
      aliases: web web.example.com
  - name: old
    ensure: absent
  - name: db1
    target: /etc/hosts.d/db
    fields:
      ip: 192.0.2.2
`

const cueManifest = `
format:         "hosts"
default_target: "/etc/hosts"
records: [
	{
		name: "web1"
		fields: {
			ip:      "192.0.2.10"
			aliases: "web web.example.com"
		}
	},
	{
		name:   "old"
		ensure: "absent"
	},
]
`

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	m, err := LoadYAML(writeManifest(t, "hosts.yaml", yamlManifest))
	require.NoError(t, err)

	assert.Equal(t, "hosts", m.Format)
	assert.Equal(t, "/etc/hosts", m.DefaultTarget)
	require.Len(t, m.Records, 3)

	web := m.Records[0]
	assert.Equal(t, "web1", web.Name())
	assert.Empty(t, web.Target())
	assert.False(t, web.Absent())
	ip, ok := web.Declared("ip")
	assert.True(t, ok)
	assert.Equal(t, "192.0.2.10", ip)
	assert.Equal(t, []string{"aliases", "ip"}, web.DeclaredFields())

	assert.True(t, m.Records[1].Absent())
	assert.Equal(t, "/etc/hosts.d/db", m.Records[2].Target())
}

func TestLoadCUE(t *testing.T) {
	m, err := LoadCUE(writeManifest(t, "hosts.cue", cueManifest))
	require.NoError(t, err)

	assert.Equal(t, "hosts", m.Format)
	assert.Equal(t, "/etc/hosts", m.DefaultTarget)
	require.Len(t, m.Records, 2)
	assert.Equal(t, "web1", m.Records[0].Name())
	assert.True(t, m.Records[1].Absent())
}

func TestLoadCUERejectsSchemaViolations(t *testing.T) {
	bad := `
format:         "hosts"
default_target: "/etc/hosts"
records: [{name: "x", ensure: "maybe"}]
`
	_, err := LoadCUE(writeManifest(t, "bad.cue", bad))
	require.Error(t, err)
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	m, err := Load(writeManifest(t, "m.cue", cueManifest))
	require.NoError(t, err)
	assert.Len(t, m.Records, 2)

	m, err = Load(writeManifest(t, "m.yaml", yamlManifest))
	require.NoError(t, err)
	assert.Len(t, m.Records, 3)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Manifest {
		return &Manifest{
			Format:        "hosts",
			DefaultTarget: "/etc/hosts",
			Records: []*SpecDef{
				{RecordName: "a"},
				{RecordName: "b", Ensure: "absent"},
			},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Manifest)
		wantErr string
	}{
		{
			name:    "missing format",
			mutate:  func(m *Manifest) { m.Format = "" },
			wantErr: "format is required",
		},
		{
			name:    "missing default target",
			mutate:  func(m *Manifest) { m.DefaultTarget = "" },
			wantErr: "default_target is required",
		},
		{
			name:    "unknown format",
			mutate:  func(m *Manifest) { m.Format = "fstab" },
			wantErr: "unknown format",
		},
		{
			name:    "unnamed record",
			mutate:  func(m *Manifest) { m.Records[1].RecordName = "" },
			wantErr: "has no name",
		},
		{
			name:    "duplicate name",
			mutate:  func(m *Manifest) { m.Records[1].RecordName = "a" },
			wantErr: "duplicate record name",
		},
		{
			name:    "bad ensure",
			mutate:  func(m *Manifest) { m.Records[0].Ensure = "maybe" },
			wantErr: "ensure must be",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := valid()
			tc.mutate(m)
			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParserDispatch(t *testing.T) {
	m := &Manifest{Format: "hosts", DefaultTarget: "/etc/hosts"}
	p, err := m.Parser()
	require.NoError(t, err)
	assert.Equal(t, "name", p.Key())

	m = &Manifest{
		Format:        "keyvalue",
		DefaultTarget: "/etc/sysctl.conf",
		KeyValue:      &KeyValueConf{Name: "sysctl", Separator: " = "},
	}
	p, err = m.Parser()
	require.NoError(t, err)
	assert.Empty(t, p.Key())
	assert.Equal(t, []string{"value"}, p.Fields())

	m = &Manifest{
		Format:        "tabular",
		DefaultTarget: "/etc/ethers",
		Tabular:       &TabularConf{Name: "ethers", Key: "name", Fields: []string{"mac", "name"}},
	}
	p, err = m.Parser()
	require.NoError(t, err)
	assert.Equal(t, []string{"mac", "name"}, p.Fields())

	m = &Manifest{Format: "tabular", DefaultTarget: "/etc/ethers"}
	_, err = m.Parser()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a tabular section")
}

func TestSpecsPreserveOrder(t *testing.T) {
	m := &Manifest{
		Format:        "hosts",
		DefaultTarget: "/etc/hosts",
		Records: []*SpecDef{
			{RecordName: "b"},
			{RecordName: "a"},
		},
	}
	specs := m.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, "b", specs[0].Name())
	assert.Equal(t, "a", specs[1].Name())
}
