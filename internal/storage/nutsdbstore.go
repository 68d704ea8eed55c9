package storage

import (
	"errors"
	"fmt"

	"github.com/nutsdb/nutsdb"
)

const (
	bucketLocalStorage = "local_storage"
	// formatKey is written on open so the bucket index exists before the
	// first user write; lookups of missing keys then report ErrKeyNotFound.
	formatKey     = "__format"
	formatVersion = "1"
)

type nutsdbStore struct {
	db *nutsdb.DB
}

// NewNutsDBStore opens (or creates) a nutsdb database in dir and returns it
// as a KeyValueStore.
func NewNutsDBStore(dir string) (KeyValueStore, error) {
	opts := nutsdb.DefaultOptions
	opts.Dir = dir
	db, err := nutsdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening nutsdb: %w", err)
	}

	if err := db.Update(func(tx *nutsdb.Tx) error {
		return tx.NewBucket(nutsdb.DataStructureBTree, bucketLocalStorage)
	}); err != nil && !errors.Is(err, nutsdb.ErrBucketAlreadyExist) {
		_ = db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	if err := db.Update(func(tx *nutsdb.Tx) error {
		return tx.Put(bucketLocalStorage, []byte(formatKey), []byte(formatVersion), nutsdb.Persistent)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("writing format marker: %w", err)
	}

	return &nutsdbStore{db: db}, nil
}

func (s *nutsdbStore) GetItem(key string) ([]byte, bool, error) {
	if err := validateNutsKey(key); err != nil {
		return nil, false, err
	}

	var value []byte
	err := s.db.View(func(tx *nutsdb.Tx) error {
		v, err := tx.Get(bucketLocalStorage, []byte(key))
		if err != nil {
			return err
		}
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		if errors.Is(err, nutsdb.ErrKeyNotFound) {
			return nil, false, nil
		}
		if errors.Is(err, nutsdb.ErrDBClosed) {
			return nil, false, ErrClosed
		}
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

func (s *nutsdbStore) SetItem(key string, value []byte) error {
	if err := validateNutsKey(key); err != nil {
		return err
	}

	err := s.db.Update(func(tx *nutsdb.Tx) error {
		return tx.Put(bucketLocalStorage, []byte(key), value, nutsdb.Persistent)
	})
	if err != nil {
		if errors.Is(err, nutsdb.ErrDBClosed) {
			return ErrClosed
		}
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *nutsdbStore) RemoveItem(key string) error {
	if err := validateNutsKey(key); err != nil {
		return err
	}

	err := s.db.Update(func(tx *nutsdb.Tx) error {
		return tx.Delete(bucketLocalStorage, []byte(key))
	})
	if err != nil {
		if errors.Is(err, nutsdb.ErrKeyNotFound) {
			return nil
		}
		if errors.Is(err, nutsdb.ErrDBClosed) {
			return ErrClosed
		}
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

func validateNutsKey(key string) error {
	if key == formatKey {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidKey, key)
	}
	return validateKey(key)
}

func (s *nutsdbStore) Close() error {
	if err := s.db.Close(); err != nil && !errors.Is(err, nutsdb.ErrDBClosed) {
		return fmt.Errorf("closing nutsdb: %w", err)
	}
	return nil
}
