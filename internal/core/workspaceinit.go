package core

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/todo/pkg/models"
)

// InitConfig holds the parameters for initializing a todo workspace.
type InitConfig struct {
	BasePath string
	// Backend overrides the default storage backend when set.
	Backend models.StorageBackend
}

// InitResult holds a summary of what was created vs. skipped.
type InitResult struct {
	Created []string
	Skipped []string
}

// WorkspaceInitializer writes a default .todoconfig and creates the storage
// directory it points at.
type WorkspaceInitializer interface {
	Init(config InitConfig) (*InitResult, error)
}

type workspaceInitializer struct{}

// NewWorkspaceInitializer creates a new WorkspaceInitializer.
func NewWorkspaceInitializer() WorkspaceInitializer {
	return &workspaceInitializer{}
}

const configHeader = `# todo configuration. Every key can also be set from the environment as
# TODO_<SECTION>_<KEY>, e.g. TODO_STORAGE_BACKEND=memory.
`

// Init is safe to run on an existing workspace: files and directories that
// already exist are skipped and not overwritten.
func (wi *workspaceInitializer) Init(config InitConfig) (*InitResult, error) {
	result := &InitResult{}

	cfg := DefaultGlobalConfig()
	if config.Backend != "" {
		cfg.Storage.Backend = config.Backend
	}
	if err := NewConfigurationManager(config.BasePath).ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("initializing workspace: %w", err)
	}

	created, err := ensureDir(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing workspace: creating %s: %w", config.BasePath, err)
	}
	recordResult(result, config.BasePath, created)

	if err := writeFileIfNotExists(filepath.Join(config.BasePath, ConfigFileName), func() ([]byte, error) {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, err
		}
		return append([]byte(configHeader), data...), nil
	}, result); err != nil {
		return nil, err
	}

	if cfg.Storage.Backend != models.BackendMemory {
		dataDir := filepath.Join(config.BasePath, cfg.Storage.Dir)
		created, err := ensureDir(dataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing workspace: creating %s: %w", dataDir, err)
		}
		recordResult(result, dataDir, created)
	}

	return result, nil
}

func recordResult(result *InitResult, path string, created bool) {
	if created {
		result.Created = append(result.Created, path)
	} else {
		result.Skipped = append(result.Skipped, path)
	}
}

// ensureDir creates a directory if it does not exist. Returns true if created.
func ensureDir(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileIfNotExists writes content from contentFn if the file does not exist.
// It records created/skipped in the result.
func writeFileIfNotExists(path string, contentFn func() ([]byte, error), result *InitResult) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing workspace: generating content for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("initializing workspace: writing %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}
