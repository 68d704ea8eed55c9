package models

// StorageBackend names a key-value backend for the todo store.
type StorageBackend string

const (
	BackendFile   StorageBackend = "file"
	BackendNutsDB StorageBackend = "nutsdb"
	BackendMemory StorageBackend = "memory"
)

// StorageConfig selects where the todo list is persisted.
type StorageConfig struct {
	Backend StorageBackend `yaml:"backend" mapstructure:"backend"`
	Dir     string         `yaml:"dir" mapstructure:"dir"`
	Key     string         `yaml:"key" mapstructure:"key"`
}

// EventsConfig controls the JSONL event log.
type EventsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// NotificationConfig controls outbound notifications.
type NotificationConfig struct {
	Desktop      bool   `yaml:"desktop" mapstructure:"desktop"`
	SlackWebhook string `yaml:"slack_webhook,omitempty" mapstructure:"slack_webhook"`
}

// AlertConfig holds thresholds for the alert engine.
type AlertConfig struct {
	StaleDays int `yaml:"stale_days" mapstructure:"stale_days"`
	MaxActive int `yaml:"max_active" mapstructure:"max_active"`
}

// GlobalConfig holds settings read from .todoconfig via Viper.
type GlobalConfig struct {
	Storage       StorageConfig      `yaml:"storage" mapstructure:"storage"`
	Events        EventsConfig       `yaml:"events" mapstructure:"events"`
	Notifications NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
	Alerts        AlertConfig        `yaml:"alerts" mapstructure:"alerts"`
}
