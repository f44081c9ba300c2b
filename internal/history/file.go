package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores each key as a JSON file inside Dir. Writes go through a temp file in
// the same directory followed by a rename, so a crash never leaves a half-written value.
type FileBackend struct {
	Dir string
}

// NewFileBackend ensures dir exists and returns a backend rooted there.
func NewFileBackend(dir string) (*FileBackend, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("history: file backend directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: create directory %s: %w", dir, err)
	}
	return &FileBackend{Dir: dir}, nil
}

func (f *FileBackend) path(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return filepath.Join(f.Dir, r.Replace(key)+".json")
}

// Get implements Backend.
func (f *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("history: read %s: %w", key, err)
	}
	return data, nil
}

// Put implements Backend.
func (f *FileBackend) Put(_ context.Context, key string, value []byte) error {
	target := f.path(key)
	tmp, err := os.CreateTemp(f.Dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("history: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("history: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("history: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("history: rename temp file: %w", err)
	}
	return nil
}

// Delete implements Backend. Deleting a missing key is not an error.
func (f *FileBackend) Delete(_ context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("history: delete %s: %w", key, err)
	}
	return nil
}

// Ping reports whether the storage directory is reachable.
func (f *FileBackend) Ping(_ context.Context) error {
	info, err := os.Stat(f.Dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("history: %s is not a directory", f.Dir)
	}
	return nil
}
