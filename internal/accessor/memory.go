package accessor

import (
	"fmt"
	"sync"
)

// MemoryFS is an in-memory target store for tests. It hands out Memory
// accessors sharing one backing map and counts backup invocations so
// tests can assert the at-most-once-per-generation property.
type MemoryFS struct {
	mu      sync.Mutex
	files   map[string]string
	backups map[string]string
	counts  map[string]int // target -> backup invocations
	writes  map[string]int // target -> successful writes

	// FailWrites lists targets whose Write calls fail, for testing
	// dirty-set retention on write failure.
	failWrites map[string]error
}

// NewMemoryFS creates an empty in-memory target store.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files:      make(map[string]string),
		backups:    make(map[string]string),
		counts:     make(map[string]int),
		writes:     make(map[string]int),
		failWrites: make(map[string]error),
	}
}

// Factory returns an accessor.Factory over this store. The returned
// accessors implement Backuper.
func (fs *MemoryFS) Factory() Factory {
	return func(target string) Accessor {
		return &Memory{fs: fs, target: target}
	}
}

// Seed sets a target's content directly, as if written externally.
func (fs *MemoryFS) Seed(target, text string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[target] = text
}

// Content returns a target's current content.
func (fs *MemoryFS) Content(target string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	text, ok := fs.files[target]
	return text, ok
}

// BackupContent returns a target's backed-up content.
func (fs *MemoryFS) BackupContent(target string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	text, ok := fs.backups[target]
	return text, ok
}

// WriteCount returns how many successful writes a target received.
func (fs *MemoryFS) WriteCount(target string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.writes[target]
}

// BackupCount returns how many times a target's backup ran.
func (fs *MemoryFS) BackupCount(target string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.counts[target]
}

// FailWrites makes every Write to target fail with err until cleared
// with err == nil.
func (fs *MemoryFS) FailWrites(target string, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err == nil {
		delete(fs.failWrites, target)
		return
	}
	fs.failWrites[target] = err
}

// Memory is one target's accessor inside a MemoryFS.
type Memory struct {
	fs     *MemoryFS
	target string
}

// Read implements Accessor.
func (m *Memory) Read() (string, bool, error) {
	m.fs.mu.Lock()
	defer m.fs.mu.Unlock()
	text, ok := m.fs.files[m.target]
	return text, ok, nil
}

// Write implements Accessor.
func (m *Memory) Write(text string) error {
	m.fs.mu.Lock()
	defer m.fs.mu.Unlock()
	if err, ok := m.fs.failWrites[m.target]; ok {
		return fmt.Errorf("write %s: %w", m.target, err)
	}
	m.fs.files[m.target] = text
	m.fs.writes[m.target]++
	return nil
}

// Backup implements Backuper. Like the disk accessor, backing up a
// target that does not exist yet is a no-op and is not counted.
func (m *Memory) Backup() error {
	m.fs.mu.Lock()
	defer m.fs.mu.Unlock()
	text, ok := m.fs.files[m.target]
	if !ok {
		return nil
	}
	m.fs.counts[m.target]++
	m.fs.backups[m.target] = text
	return nil
}
