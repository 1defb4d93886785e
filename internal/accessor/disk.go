package accessor

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultBackupSuffix is appended to a target's path to name its backup.
const DefaultBackupSuffix = ".bak"

// Disk accesses a target on the local filesystem. Writes are atomic:
// content goes to a temp file in the target's directory and is renamed
// into place, so a crashed write never leaves a truncated target.
type Disk struct {
	path          string
	mode          os.FileMode
	backupSuffix  string
	backupEnabled bool
}

// DiskOption configures a Disk accessor.
type DiskOption func(*Disk)

// WithMode sets the file mode for newly created targets (default 0644).
func WithMode(mode os.FileMode) DiskOption {
	return func(d *Disk) { d.mode = mode }
}

// WithBackupSuffix overrides the backup file suffix (default ".bak").
func WithBackupSuffix(suffix string) DiskOption {
	return func(d *Disk) { d.backupSuffix = suffix }
}

// WithoutBackup disables the backup capability entirely. NewDisk still
// returns a *Disk, which keeps implementing Backuper, so the accessor
// reports the disabled state through Capable and the engine's ledger
// skips it.
func WithoutBackup() DiskOption {
	return func(d *Disk) { d.backupEnabled = false }
}

// NewDisk creates a filesystem accessor for path.
func NewDisk(path string, opts ...DiskOption) *Disk {
	d := &Disk{
		path:          path,
		mode:          0o644,
		backupSuffix:  DefaultBackupSuffix,
		backupEnabled: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDiskFactory returns a Factory producing Disk accessors with the
// given options, keyed by target path.
func NewDiskFactory(opts ...DiskOption) Factory {
	return func(target string) Accessor {
		return NewDisk(target, opts...)
	}
}

// Path returns the target path this accessor is bound to.
func (d *Disk) Path() string {
	return d.path
}

// Read implements Accessor.
func (d *Disk) Read() (string, bool, error) {
	data, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", d.path, err)
	}
	return string(data), true, nil
}

// Write implements Accessor. The write is atomic via temp file + rename.
func (d *Disk) Write(text string) error {
	dir := filepath.Dir(d.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(d.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	if err := tmp.Chmod(d.mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	return nil
}

// Backup implements Backuper by copying the current content to the
// backup path. A missing target is a no-op: there is nothing to lose.
func (d *Disk) Backup() error {
	if !d.backupEnabled {
		return nil
	}
	data, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("backup %s: %w", d.path, err)
	}
	backupPath := d.path + d.backupSuffix
	if err := os.WriteFile(backupPath, data, d.mode); err != nil {
		return fmt.Errorf("backup %s: %w", d.path, err)
	}
	return nil
}

// Capable reports whether backups are enabled for this accessor.
func (d *Disk) Capable() bool {
	return d.backupEnabled
}
