package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// FileBackend stores each snapshot as <dir>/<key>.json.
// Writes go through a temp file and rename while holding an flock on
// <dir>/<key>.lock, so concurrent cad processes never see a torn file.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a file backend rooted at dir.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

// Dir returns the snapshot directory.
func (b *FileBackend) Dir() string {
	return b.dir
}

func (b *FileBackend) snapshotPath(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBackend) lockPath(key string) string {
	return filepath.Join(b.dir, key+".lock")
}

// Load implements Backend.
func (b *FileBackend) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(b.snapshotPath(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", key, err)
	}
	return data, nil
}

// Save implements Backend.
func (b *FileBackend) Save(_ context.Context, key string, data []byte) error {
	return b.withLock(key, func() error {
		return b.write(key, data)
	})
}

func (b *FileBackend) write(key string, data []byte) error {
	path := b.snapshotPath(key)
	if existing, err := os.ReadFile(path); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read snapshot %s: %w", key, err)
	}

	tmpFile, err := os.CreateTemp(b.dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp snapshot: %w", err)
	}

	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

func (b *FileBackend) withLock(key string, fn func() error) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	lockFile, err := os.OpenFile(b.lockPath(key), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	return fn()
}

// Close implements Backend.
func (b *FileBackend) Close() error {
	return nil
}
