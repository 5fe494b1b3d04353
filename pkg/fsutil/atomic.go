// Package fsutil provides durable file writes for timeline exports.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWrite replaces the file at path with data. Readers observe
// either the previous content or the new content in full, never a
// partial write: data goes to a temp file in the same directory, is
// synced, and is renamed over the target.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".recall-tmp-*")
	if err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	if err := stage(tmp, data, perm); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("atomic write %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	// Sync the directory so the rename survives a crash.
	if err := syncDir(dir); err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	return nil
}

// stage fills the temp file and makes its content durable.
func stage(f *os.File, data []byte, perm os.FileMode) error {
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Chmod(perm); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return f.Close()
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
