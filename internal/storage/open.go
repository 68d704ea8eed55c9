package storage

import (
	"fmt"
	"path/filepath"

	"github.com/valter-silva-au/todo/pkg/models"
)

// OpenKeyValueStore opens the backend named by cfg. A relative cfg.Dir is
// resolved against basePath.
func OpenKeyValueStore(basePath string, cfg models.StorageConfig) (KeyValueStore, error) {
	dir := cfg.Dir
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(basePath, dir)
	}

	switch cfg.Backend {
	case models.BackendFile, "":
		return NewFileStore(dir)
	case models.BackendNutsDB:
		return NewNutsDBStore(dir)
	case models.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
