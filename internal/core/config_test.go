package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/pkg/models"
)

func TestDefaultGlobalConfig_AlertThresholds(t *testing.T) {
	cfg := DefaultGlobalConfig()
	want := observability.DefaultAlertThresholds()
	if cfg.Alerts.StaleDays != want.StaleDays || cfg.Alerts.MaxActive != want.MaxActive {
		t.Errorf("Alerts = %+v, want %+v", cfg.Alerts, want)
	}
}

// --- Helper ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// --- LoadGlobalConfig tests ---

func TestLoadGlobalConfig_Defaults_WhenNoFile(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Storage.Backend != models.BackendFile {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, models.BackendFile)
	}
	if cfg.Storage.Key != "todos" {
		t.Errorf("Storage.Key = %q, want %q", cfg.Storage.Key, "todos")
	}
	if cfg.Storage.Dir != ".todo_data" {
		t.Errorf("Storage.Dir = %q, want %q", cfg.Storage.Dir, ".todo_data")
	}
	if !cfg.Events.Enabled {
		t.Error("Events.Enabled should default to true")
	}
	if cfg.Notifications.Desktop {
		t.Error("Notifications.Desktop should default to false")
	}
	if cfg.Alerts.StaleDays != 7 || cfg.Alerts.MaxActive != 50 {
		t.Errorf("Alerts = %+v", cfg.Alerts)
	}
}

func TestLoadGlobalConfig_ReadsTodoconfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, `
storage:
  backend: NutsDB
  dir: /var/lib/todo
  key: my-list
events:
  enabled: false
notifications:
  desktop: true
alerts:
  stale_days: 3
`)

	cfg, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Storage.Backend != models.BackendNutsDB {
		t.Errorf("Storage.Backend = %q, want nutsdb", cfg.Storage.Backend)
	}
	if cfg.Storage.Dir != "/var/lib/todo" {
		t.Errorf("Storage.Dir = %q", cfg.Storage.Dir)
	}
	if cfg.Storage.Key != "my-list" {
		t.Errorf("Storage.Key = %q", cfg.Storage.Key)
	}
	if cfg.Events.Enabled {
		t.Error("Events.Enabled should be false")
	}
	if !cfg.Notifications.Desktop {
		t.Error("Notifications.Desktop should be true")
	}
	if cfg.Alerts.StaleDays != 3 {
		t.Errorf("Alerts.StaleDays = %d, want 3", cfg.Alerts.StaleDays)
	}
	// Unset keys keep their defaults.
	if cfg.Alerts.MaxActive != 50 {
		t.Errorf("Alerts.MaxActive = %d, want 50", cfg.Alerts.MaxActive)
	}
}

func TestLoadGlobalConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, "storage:\n  backend: nutsdb\n")
	t.Setenv("TODO_STORAGE_BACKEND", "memory")
	t.Setenv("TODO_ALERTS_MAX_ACTIVE", "3")

	cfg, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Backend != models.BackendMemory {
		t.Errorf("Storage.Backend = %q, want env override %q", cfg.Storage.Backend, models.BackendMemory)
	}
	if cfg.Alerts.MaxActive != 3 {
		t.Errorf("Alerts.MaxActive = %d, want 3", cfg.Alerts.MaxActive)
	}
}

func TestLoadGlobalConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, "storage: [unclosed\n")

	_, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err == nil {
		t.Fatal("expected error for malformed config")
	}
}

// --- ValidateConfig tests ---

func TestValidateConfig_Defaults(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(DefaultGlobalConfig()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidateConfig_Nil(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestValidateConfig_CollectsAllProblems(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	cfg := DefaultGlobalConfig()
	cfg.Storage.Backend = "redis"
	cfg.Storage.Key = " "
	cfg.Alerts.StaleDays = -1
	cfg.Notifications.SlackWebhook = "http://insecure.example.com"

	err := cm.ValidateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"storage.backend", "storage.key", "alerts.stale_days", "slack_webhook"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestValidateConfig_MemoryBackendNeedsNoDir(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	cfg := DefaultGlobalConfig()
	cfg.Storage.Backend = models.BackendMemory
	cfg.Storage.Dir = ""
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
