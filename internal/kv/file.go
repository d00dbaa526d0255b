package kv

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// fileExt is appended to every escaped key on disk.
const fileExt = ".json"

// FileStore implements Store using one file per key in a directory.
// Keys are path-escaped so any key maps to a single flat filename.
type FileStore struct {
	dir string
}

// NewFileStore creates a filesystem-backed store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kv: creating store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the key files.
func (fs *FileStore) Dir() string {
	return fs.dir
}

func (fs *FileStore) path(key string) string {
	return filepath.Join(fs.dir, url.PathEscape(key)+fileExt)
}

// Get implements Store.
func (fs *FileStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(fs.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kv: reading %q: %w", key, err)
	}
	return data, nil
}

// Set implements Store. The value is written to a temp file and renamed
// into place so readers never observe a partial write.
func (fs *FileStore) Set(key string, value []byte) error {
	target := fs.path(key)
	tmp, err := os.CreateTemp(fs.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("kv: creating temp file for %q: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("kv: writing %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("kv: closing %q: %w", key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("kv: renaming %q: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (fs *FileStore) Delete(key string) error {
	err := os.Remove(fs.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("kv: deleting %q: %w", key, err)
	}
	return nil
}

// Keys implements Store. Files that are not escaped keys are skipped.
func (fs *FileStore) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("kv: reading store directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
