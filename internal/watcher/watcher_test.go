package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForEvent(t *testing.T, w *Watcher, target string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Target == target {
				return
			}
		case err := <-w.Errors():
			t.Fatalf("watch error: %v", err)
		case <-deadline:
			t.Fatalf("no event for %s", target)
		}
	}
}

func TestWatcherReportsTargetWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(target, []byte("127.0.0.1\tlocalhost\n"), 0o644))

	w, err := New([]string{target})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(target, []byte("127.0.0.2\tlocalhost\n"), 0o644))
	waitForEvent(t, w, target)
}

func TestWatcherSeesRenameReplacement(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(target, []byte("a\n"), 0o644))

	w, err := New([]string{target})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	// Atomic replace: write a sibling, rename it over the target. A
	// direct file watch would go stale here.
	tmp := filepath.Join(dir, ".hosts.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("b\n"), 0o644))
	require.NoError(t, os.Rename(tmp, target))
	waitForEvent(t, w, target)
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(target, []byte("a\n"), 0o644))

	w, err := New([]string{target})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated"), []byte("x\n"), 0o644))

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for %s", ev.Target)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherWatchesNotYetExistingTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "hosts")

	// The directory is watched, so the target's first creation is seen.
	w, err := New([]string{target})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(target, []byte("a\n"), 0o644))
	waitForEvent(t, w, target)
}

func TestWatcherStartTwiceFails(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "hosts")})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	assert.Error(t, w.Start())
}

func TestWatcherStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "hosts")})
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	_, ok := <-w.Events()
	assert.False(t, ok, "events channel closed after stop")
}
