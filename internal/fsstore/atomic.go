package fsstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates the directory and any missing parents. A zero perm
// falls back to the package default (owner-only).
func EnsureDir(path string, perm os.FileMode) error {
	p, err := normalizePath(path)
	if err != nil {
		return err
	}
	if perm == 0 {
		perm = defaultDirPerm
	}
	if err := os.MkdirAll(p, perm); err != nil {
		return fmt.Errorf("fsstore: mkdir %s: %w", p, err)
	}
	return nil
}

// writeAtomic lands content at path via a temp file in the same
// directory plus a rename, so readers only ever see a complete file.
func writeAtomic(path string, content []byte, opts FileOptions) error {
	p, err := normalizePath(path)
	if err != nil {
		return err
	}
	opts = normalizeFileOptions(opts)

	dir := filepath.Dir(p)
	if err := EnsureDir(dir, opts.DirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(p)+".tmp.*")
	if err != nil {
		return fmt.Errorf("%w: temp for %s: %v", ErrAtomicWriteFailed, p, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrAtomicWriteFailed, p, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %v", ErrAtomicWriteFailed, p, err)
	}
	if err := tmp.Chmod(opts.FilePerm); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", ErrAtomicWriteFailed, p, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrAtomicWriteFailed, p, err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrAtomicWriteFailed, p, err)
	}

	// Syncing the directory makes the rename itself durable; losing
	// that on crash only loses the latest write, so errors are ignored.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
