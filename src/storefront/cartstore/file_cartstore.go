package cartstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileSlot keeps the blob in <dir>/<key>.json. It is the durable per-user
// store for the terminal front end.
type FileSlot struct {
	mu   sync.Mutex
	dir  string
	path string
}

// NewFileSlot returns a slot stored under dir.
func NewFileSlot(dir, key string) *FileSlot {
	if key == "" {
		key = DefaultSlotKey
	}
	return &FileSlot{
		dir:  dir,
		path: filepath.Join(dir, key+".json"),
	}
}

// Path is the file backing the slot.
func (f *FileSlot) Path() string {
	return f.path
}

// Initialize creates the slot directory.
func (f *FileSlot) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create slot dir %s", f.dir)
	}
	return nil
}

func (f *FileSlot) Read(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read slot %s", f.path)
	}
	return data, nil
}

// Write replaces the slot file atomically through a temp file and a rename.
func (f *FileSlot) Write(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp slot file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp slot file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp slot file")
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Wrapf(err, "replace slot %s", f.path)
	}
	return nil
}

// Ping reports whether the slot directory is reachable.
func (f *FileSlot) Ping(ctx context.Context) bool {
	info, err := os.Stat(f.dir)
	return err == nil && info.IsDir()
}
