package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatsync/flatsync/internal/accessor"
	"github.com/flatsync/flatsync/internal/parser"
	"github.com/flatsync/flatsync/internal/record"
)

func TestHandleCreateCopiesDeclaredProperties(t *testing.T) {
	eng := testEngine(accessor.NewMemoryFS())

	h := eng.NewHandle(hostSpec("web1", "", map[string]string{
		"ip":      "192.0.2.10",
		"aliases": "web",
		"bogus":   "ignored",
	}))
	require.NoError(t, h.Create())

	rec := h.Record()
	require.NotNil(t, rec)
	assert.Equal(t, "192.0.2.10", rec.Fields["ip"])
	assert.Equal(t, "web", rec.Fields["aliases"])
	_, hasBogus := rec.Get("bogus")
	assert.False(t, hasBogus, "only schema attributes transfer")
	assert.True(t, h.Exists())
	assert.Equal(t, []string{"/etc/hosts"}, eng.Dirty())
}

func TestHandleCreateWithoutDefaultTargetFails(t *testing.T) {
	fs := accessor.NewMemoryFS()
	eng := New(parser.NewHosts(), fs.Factory(), "")

	h := eng.NewHandle(hostSpec("web1", "", nil))
	err := h.Create()
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestHandleGetDeclaredFallback(t *testing.T) {
	fs := accessor.NewMemoryFS()
	fs.Seed("/etc/hosts", "127.0.0.1\tlocalhost\n")
	eng := testEngine(fs)
	require.NoError(t, eng.PrefetchAll(nil))

	handles := eng.Bind([]record.Spec{
		hostSpec("localhost", "", map[string]string{"aliases": "loopback"}),
	})
	h := handles[0]

	// Stored value wins.
	v, ok := h.Get("ip")
	assert.True(t, ok)
	assert.Equal(t, "127.0.0.1", v)

	// No stored value, declared fallback.
	v, ok = h.Get("aliases")
	assert.True(t, ok)
	assert.Equal(t, "loopback", v)

	// Structurally invalid attribute.
	_, ok = h.Get("mtu")
	assert.False(t, ok)
}

func TestHandleSetInvalidAttribute(t *testing.T) {
	fs := accessor.NewMemoryFS()
	fs.Seed("/etc/hosts", "127.0.0.1\tlocalhost\n")
	eng := testEngine(fs)
	require.NoError(t, eng.PrefetchAll(nil))

	h := eng.Bind([]record.Spec{hostSpec("localhost", "", nil)})[0]

	err := h.Set("mtu", "1500")
	require.Error(t, err)
	assert.True(t, IsInternalError(err))
	assert.Empty(t, eng.Dirty())
}

func TestHandleSetOnUncreatedRecord(t *testing.T) {
	eng := testEngine(accessor.NewMemoryFS())

	h := eng.NewHandle(hostSpec("web1", "", nil))
	err := h.Set("ip", "192.0.2.1")
	require.Error(t, err)
	assert.True(t, IsInternalError(err))
}

func TestHandleSetMarksBothTargetsOnMove(t *testing.T) {
	fs := accessor.NewMemoryFS()
	fs.Seed("/etc/hosts", "127.0.0.1\tlocalhost\n")
	eng := testEngine(fs)
	require.NoError(t, eng.PrefetchAll(nil))

	// The spec wants this record in a different file than where it was
	// found; a mutation must dirty both so the move rewrites both.
	handles := eng.Bind([]record.Spec{
		hostSpec("localhost", "/etc/hosts.d/local", nil),
	})
	require.NoError(t, handles[0].Set("ip", "127.0.0.2"))

	assert.Equal(t, []string{"/etc/hosts", "/etc/hosts.d/local"}, eng.Dirty())
}

func TestHandleFlushAssignsDefaultTargetAndKey(t *testing.T) {
	fs := accessor.NewMemoryFS()
	eng := testEngine(fs)
	require.NoError(t, eng.PrefetchAll(nil))

	h := eng.NewHandle(hostSpec("web1", "", map[string]string{"ip": "192.0.2.10"}))
	require.NoError(t, h.Create())

	rec := h.Record()
	assert.Empty(t, rec.Target, "target assignment is lazy until the first flush")
	_, hasName := rec.Get("name")
	assert.False(t, hasName)

	require.NoError(t, h.Flush())
	assert.Equal(t, "/etc/hosts", rec.Target)
	name, _ := rec.Get("name")
	assert.Equal(t, "web1", name, "key attribute copied from the bound spec")
	assert.True(t, rec.OnDisk)
}

func TestHandleFlushHonorsTargetOverride(t *testing.T) {
	fs := accessor.NewMemoryFS()
	eng := testEngine(fs)
	require.NoError(t, eng.PrefetchAll(nil))

	h := eng.NewHandle(hostSpec("db1", "/etc/hosts.d/db", map[string]string{"ip": "192.0.2.2"}))
	require.NoError(t, h.Create())
	require.NoError(t, h.Flush())

	got, ok := fs.Content("/etc/hosts.d/db")
	require.True(t, ok)
	assert.Equal(t, testHeader+"192.0.2.2\tdb1\n", got)
	_, wroteDefault := fs.Content("/etc/hosts")
	assert.False(t, wroteDefault)
}

func TestHandleFlushUnboundIsNoop(t *testing.T) {
	fs := accessor.NewMemoryFS()
	eng := testEngine(fs)

	h := eng.NewHandle(hostSpec("ghost", "", nil))
	require.NoError(t, h.Flush())
	assert.Equal(t, 0, fs.WriteCount("/etc/hosts"))
}

func TestHandleDestroyUnboundSpec(t *testing.T) {
	fs := accessor.NewMemoryFS()
	eng := testEngine(fs)
	require.NoError(t, eng.PrefetchAll(nil))

	// Destroying something that never existed on disk still yields a
	// consistent tombstone and a rewrite that omits it.
	h := eng.NewHandle(hostSpec("ghost", "", nil))
	require.NoError(t, h.Destroy())
	assert.False(t, h.Exists())
	assert.Equal(t, []string{"/etc/hosts"}, eng.Dirty())

	require.NoError(t, h.Flush())
	got, ok := fs.Content("/etc/hosts")
	require.True(t, ok)
	assert.Equal(t, testHeader, got)
}

func TestHandleExistsStates(t *testing.T) {
	eng := testEngine(accessor.NewMemoryFS())

	h := eng.NewHandle(hostSpec("web1", "", map[string]string{"ip": "192.0.2.1"}))
	assert.False(t, h.Exists(), "unbound")

	require.NoError(t, h.Create())
	assert.True(t, h.Exists(), "created")

	require.NoError(t, h.Destroy())
	assert.False(t, h.Exists(), "destroyed")
	require.NotNil(t, h.Record(), "tombstone stays in memory")
	assert.Equal(t, record.EnsureAbsent, h.Record().Ensure)
}
