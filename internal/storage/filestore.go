package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileStore keeps each key in its own <key>.json file under dir.
type fileStore struct {
	mu     sync.RWMutex
	dir    string
	closed bool
}

// NewFileStore creates a KeyValueStore rooted at dir, creating the directory
// if needed.
func NewFileStore(dir string) (KeyValueStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

func (s *fileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *fileStore) lockPath(key string) string {
	return filepath.Join(s.dir, "."+key+".lock")
}

func (s *fileStore) GetItem(key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, ErrClosed
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, true, nil
}

// SetItem writes to a temporary file and renames it into place, so readers
// never observe a partially written value. Writers in other processes are
// serialised with a lock file next to the value.
func (s *fileStore) SetItem(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	unlock, err := lockFile(s.lockPath(key))
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	defer func() { _ = unlock() }()

	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: creating temp file: %w", key, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: closing temp file: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("writing %s: replacing file: %w", key, err)
	}
	return nil
}

func (s *fileStore) RemoveItem(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	unlock, err := lockFile(s.lockPath(key))
	if err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	defer func() { _ = unlock() }()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
