// Package storage provides the persistence layer of the todo manager: a small
// key-value abstraction modelled on browser local storage, its backends, and
// the repository that keeps the todo list under a single key.
package storage

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")
	// ErrInvalidKey is returned for keys a backend cannot represent.
	ErrInvalidKey = errors.New("invalid key")
)

// KeyValueStore is a string-keyed store of raw values.
// Implementations are safe for concurrent use.
type KeyValueStore interface {
	// GetItem returns the value for key and whether it was present.
	GetItem(key string) ([]byte, bool, error)
	// SetItem stores value under key, replacing any previous value.
	SetItem(key string, value []byte) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(key string) error
	Close() error
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key must not be empty", ErrInvalidKey)
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// memoryStore keeps values in a map. It is used for ephemeral sessions and tests.
type memoryStore struct {
	mu     sync.RWMutex
	items  map[string][]byte
	closed bool
}

// NewMemoryStore creates an empty in-memory KeyValueStore.
func NewMemoryStore() KeyValueStore {
	return &memoryStore{items: make(map[string][]byte)}
}

func (s *memoryStore) GetItem(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, ErrClosed
	}
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *memoryStore) SetItem(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.items[key] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	delete(s.items, key)
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
