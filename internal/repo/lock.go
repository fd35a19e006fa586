package repo

import (
	"fmt"
	"os"
	"path/filepath"
)

// lockFileName is the flock target inside the discovery directory.
const lockFileName = ".discovery.lock"

// LockExclusive acquires the workspace's single-writer lock without
// blocking. It fails if another process holds the lock. The lock is
// advisory; read-only operations do not take it.
func (r *Repo) LockExclusive() error {
	if r.lock != nil {
		return nil
	}
	path := filepath.Join(r.Dir, lockFileName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return NewIOError("stage", lockFileName, err)
	}
	if err := flockExclusive(f); err != nil {
		f.Close()
		return fmt.Errorf("workspace is locked by another process: %w", err)
	}
	r.lock = f
	return nil
}

// Unlock releases the single-writer lock if held.
func (r *Repo) Unlock() error {
	if r.lock == nil {
		return nil
	}
	err := flockUnlock(r.lock)
	closeErr := r.lock.Close()
	r.lock = nil
	if err != nil {
		return err
	}
	return closeErr
}
