// Package kvstore is the small key-value persistence collaborator used for
// settings and database connections, kept outside the relational store.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// ErrNoValue is returned by Get when the key has never been set.
var ErrNoValue = errors.New("no value for key")

// Store is simple string get/set/delete by key.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// FileStore persists all keys as a single JSON document on an afero
// filesystem, written atomically via a temp file rename.
type FileStore struct {
	fs   afero.Fs
	path string

	mu     sync.Mutex
	values map[string]string
}

// NewFileStore opens the document at path, creating parent directories as
// needed. A missing file is an empty store, not an error.
func NewFileStore(fs afero.Fs, path string) (*FileStore, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	s := &FileStore{fs: fs, path: path, values: map[string]string{}}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.values); err != nil {
			return nil, fmt.Errorf("failed to parse store: %w", err)
		}
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNoValue
	}
	return v, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flushLocked()
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{values: map[string]string{}}
}

func (s *MemStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNoValue
	}
	return v, nil
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
