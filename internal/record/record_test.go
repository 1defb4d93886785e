package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCopiesFields(t *testing.T) {
	src := map[string]string{"ip": "127.0.0.1"}
	rec := New("localhost", src)

	src["ip"] = "changed"
	v, ok := rec.Get("ip")
	assert.True(t, ok)
	assert.Equal(t, "127.0.0.1", v)
}

func TestSetAllocatesFieldMap(t *testing.T) {
	rec := &Record{Kind: KindData}
	rec.Set("ip", "192.0.2.1")

	v, ok := rec.Get("ip")
	assert.True(t, ok)
	assert.Equal(t, "192.0.2.1", v)
}

func TestSortedFields(t *testing.T) {
	rec := New("x", map[string]string{"c": "3", "a": "1", "b": "2"})
	assert.Equal(t, []string{"a", "b", "c"}, rec.SortedFields())
}

func TestEnsureString(t *testing.T) {
	assert.Equal(t, "unset", EnsureUnset.String())
	assert.Equal(t, "present", EnsurePresent.String())
	assert.Equal(t, "absent", EnsureAbsent.String())
}

func TestStaticSpec(t *testing.T) {
	spec := &StaticSpec{
		SpecName:   "web1",
		SpecTarget: "/etc/hosts",
		Values:     map[string]string{"ip": "192.0.2.10", "aliases": "web"},
	}

	assert.Equal(t, "web1", spec.Name())
	assert.Equal(t, "/etc/hosts", spec.Target())

	v, ok := spec.Declared("ip")
	assert.True(t, ok)
	assert.Equal(t, "192.0.2.10", v)

	_, ok = spec.Declared("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"aliases", "ip"}, spec.DeclaredFields())
}
