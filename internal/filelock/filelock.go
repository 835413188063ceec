// Package filelock provides the cross-process run lock and the atomic
// replace used to write corrected files back to disk.
package filelock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by AcquireRunLock when another process holds the lock.
var ErrLocked = errors.New("another wsfix run holds the lock")

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock for the given path.
// The lock file will be created at the specified path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock acquires an exclusive lock on the file, blocking until the lock is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// TryLock attempts to acquire an exclusive lock on the file without blocking.
// Returns true if the lock was acquired, false if the lock is held by another process.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// AcquireRunLock takes the non-blocking run lock in dir (dir/run.lock).
// It returns ErrLocked if another process already holds it.
func AcquireRunLock(dir string) (*FileLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory %s: %w", dir, err)
	}
	lock := NewFileLock(filepath.Join(dir, "run.lock"))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}
	return lock, nil
}

// resolveTarget follows a symlink at path so the link target is replaced rather
// than the link itself, and returns the permission bits to give the new file.
// New files get 0644.
func resolveTarget(path string) (string, fs.FileMode, error) {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return path, 0644, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(path)
		if err != nil {
			return "", 0, fmt.Errorf("failed to resolve symlink %s: %w", path, err)
		}
		info, err = os.Stat(target)
		if err != nil {
			return "", 0, fmt.Errorf("failed to stat %s: %w", target, err)
		}
		path = target
	}

	if !info.Mode().IsRegular() {
		return "", 0, fmt.Errorf("not a regular file: %s", path)
	}
	return path, info.Mode().Perm(), nil
}

// AtomicWrite replaces the file at path with data using a temp file and rename.
// Readers never see a partial write, and if any step fails the original file is
// left as it was.
//
// The process:
// 1. Create a temporary file in the same directory as the target
// 2. Write and fsync the content
// 3. Copy the original permission bits to the temp file
// 4. Rename the temporary file over the target (atomic on one filesystem)
func AtomicWrite(path string, data []byte) error {
	target, perm, err := resolveTarget(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Same directory as the target keeps the rename on one filesystem
	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(target)+".wsfix-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, target); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", target, err)
	}

	tempFile = nil
	return nil
}
