// Package core contains the business logic of the todo manager: the
// TodoManager with its listener registry, id generation, and configuration.
package core

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/pkg/models"
)

// ConfigFileName is the name of the global configuration file.
const ConfigFileName = ".todoconfig"

// ConfigurationManager defines the interface for loading and validating
// configuration from the .todoconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .todoconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	thresholds := observability.DefaultAlertThresholds()
	return &models.GlobalConfig{
		Storage: models.StorageConfig{
			Backend: models.BackendFile,
			Dir:     ".todo_data",
			Key:     "todos",
		},
		Events: models.EventsConfig{Enabled: true},
		Alerts: models.AlertConfig{
			StaleDays: thresholds.StaleDays,
			MaxActive: thresholds.MaxActive,
		},
	}
}

// LoadGlobalConfig reads the .todoconfig file from the base path using Viper.
// If the file does not exist, defaults are used. Any key can be overridden
// from the environment as TODO_<SECTION>_<KEY>, e.g. TODO_STORAGE_BACKEND.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("TODO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage.backend", string(cfg.Storage.Backend))
	v.SetDefault("storage.dir", cfg.Storage.Dir)
	v.SetDefault("storage.key", cfg.Storage.Key)
	v.SetDefault("events.enabled", cfg.Events.Enabled)
	v.SetDefault("notifications.desktop", cfg.Notifications.Desktop)
	v.SetDefault("notifications.slack_webhook", cfg.Notifications.SlackWebhook)
	v.SetDefault("alerts.stale_days", cfg.Alerts.StaleDays)
	v.SetDefault("alerts.max_active", cfg.Alerts.MaxActive)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	cfg.Storage.Backend = models.StorageBackend(strings.ToLower(v.GetString("storage.backend")))
	cfg.Storage.Dir = v.GetString("storage.dir")
	cfg.Storage.Key = v.GetString("storage.key")
	cfg.Events.Enabled = v.GetBool("events.enabled")
	cfg.Notifications.Desktop = v.GetBool("notifications.desktop")
	cfg.Notifications.SlackWebhook = v.GetString("notifications.slack_webhook")
	cfg.Alerts.StaleDays = v.GetInt("alerts.stale_days")
	cfg.Alerts.MaxActive = v.GetInt("alerts.max_active")

	return cfg, nil
}

var validBackends = map[models.StorageBackend]bool{
	models.BackendFile:   true,
	models.BackendNutsDB: true,
	models.BackendMemory: true,
}

// ValidateConfig checks the configuration for invalid values and returns a
// single error listing every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if !validBackends[cfg.Storage.Backend] {
		errs = append(errs, fmt.Sprintf(
			"storage.backend %q is invalid, must be one of: file, nutsdb, memory",
			cfg.Storage.Backend,
		))
	}
	if strings.TrimSpace(cfg.Storage.Key) == "" {
		errs = append(errs, "storage.key must not be empty")
	}
	if cfg.Storage.Backend != models.BackendMemory && strings.TrimSpace(cfg.Storage.Dir) == "" {
		errs = append(errs, "storage.dir must not be empty")
	}
	if cfg.Alerts.StaleDays < 0 {
		errs = append(errs, fmt.Sprintf("alerts.stale_days must be non-negative, got %d", cfg.Alerts.StaleDays))
	}
	if cfg.Alerts.MaxActive < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_active must be non-negative, got %d", cfg.Alerts.MaxActive))
	}
	if hook := cfg.Notifications.SlackWebhook; hook != "" {
		if u, err := url.Parse(hook); err != nil || u.Scheme != "https" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("notifications.slack_webhook %q must be an https URL", hook))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
