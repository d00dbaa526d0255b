// Package kv is the key-value adapter over the host's durable storage.
//
// It has no logic of its own: every backend exposes the same
// get/set/delete/enumerate contract and values are opaque bytes
// (UTF-8 JSON by convention, see GetJSON/SetJSON).
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Store defines the storage contract shared by all backends.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set writes value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys returns every key starting with prefix, sorted ascending.
	Keys(prefix string) ([]string, error)
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Open creates the backend named by kind rooted at dir.
// The returned closer is always non-nil and safe to call.
func Open(kind, dir string) (Store, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case BackendMemory:
		return NewMemory(), nopCloser{}, nil
	case BackendSQLite, "":
		s, err := OpenSQLite(dir)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, s, nil
	case BackendFile:
		s, err := NewFileStore(dir)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, nopCloser{}, nil
	default:
		return nil, nopCloser{}, fmt.Errorf("kv: unknown backend %q: must be one of: memory, sqlite, file", kind)
	}
}

// GetJSON reads key and decodes it into v.
func GetJSON(s Store, key string, v any) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("kv: decode %q: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}
	return s.Set(key, data)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
