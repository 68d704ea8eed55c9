// Package internal provides the App struct that wires all components of the
// todo application together and initializes the CLI layer.
package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/todo/internal/cli"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/internal/storage"
	"github.com/valter-silva-au/todo/pkg/models"
)

// EventLogFileName is the JSONL event log written next to .todoconfig.
const EventLogFileName = ".todo_events.jsonl"

// App holds all service dependencies for the todo application.
type App struct {
	BasePath string
	Config   *models.GlobalConfig

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	Store storage.KeyValueStore
	Repo  storage.TodoRepository

	// Core services
	TodoMgr       core.TodoManager
	WorkspaceInit core.WorkspaceInitializer

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
	Desktop     *observability.DesktopNotifier
}

// NewApp creates and wires all components of the todo application.
// basePath is the directory holding .todoconfig and the data directory.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	globalCfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using defaults\n", err)
		globalCfg = core.DefaultGlobalConfig()
	}
	if err := app.ConfigMgr.ValidateConfig(globalCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using defaults\n", err)
		globalCfg = core.DefaultGlobalConfig()
	}
	app.Config = globalCfg

	// --- Observability ---
	if globalCfg.Events.Enabled {
		app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, EventLogFileName))
		if err != nil {
			// Non-fatal: run without an event log.
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	var notifiers []observability.Notifier
	if globalCfg.Notifications.Desktop {
		app.Desktop = observability.NewDesktopNotifier()
		notifiers = append(notifiers, app.Desktop)
	}
	if globalCfg.Notifications.SlackWebhook != "" {
		notifiers = append(notifiers, observability.NewSlackNotifier(globalCfg.Notifications.SlackWebhook))
	}
	if len(notifiers) > 0 {
		app.Notifier = observability.NewMultiNotifier(notifiers...)
	}

	// --- Storage layer ---
	app.Store, err = storage.OpenKeyValueStore(basePath, globalCfg.Storage)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("opening %s storage: %w", globalCfg.Storage.Backend, err)
	}
	app.Repo = storage.NewTodoRepository(app.Store, globalCfg.Storage.Key)

	// --- Core services ---
	opts := []core.ManagerOption{}
	if app.EventLog != nil {
		opts = append(opts, core.WithEventLogger(&eventLogAdapter{log: app.EventLog}))
	}
	if app.Desktop != nil {
		opts = append(opts, core.WithListener(observability.NewCompletionWatcher(app.Desktop.Announce)))
	}
	app.TodoMgr = core.NewTodoManager(app.Repo, opts...)
	app.WorkspaceInit = core.NewWorkspaceInitializer()

	app.AlertEngine = observability.NewAlertEngine(app.TodoMgr, observability.AlertThresholds{
		StaleDays: globalCfg.Alerts.StaleDays,
		MaxActive: globalCfg.Alerts.MaxActive,
	})

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = globalCfg
	cli.TodoMgr = app.TodoMgr
	cli.WorkspaceInit = app.WorkspaceInit

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases the storage backend and the event log file handle. It is
// safe to call on a partially built App.
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing storage: %w", err))
		}
	}
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ResolveBasePath determines the workspace directory. It checks the TODO_HOME
// env var, then walks up from the current directory looking for .todoconfig,
// and falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("TODO_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	cwd := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger and
// core.WarnLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.write(observability.LevelInfo, eventType, data)
}

func (a *eventLogAdapter) LogWarning(eventType string, data map[string]any) error {
	return a.write(observability.LevelWarn, eventType, data)
}

func (a *eventLogAdapter) write(level, eventType string, data map[string]any) error {
	todoID, _ := data["id"].(int64)
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Type:    eventType,
		TodoID:  todoID,
		Message: eventType,
		Data:    data,
	})
}
