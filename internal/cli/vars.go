package cli

import (
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	TodoMgr     core.TodoManager
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier

	// BasePath is the directory holding .todoconfig and the data directory.
	BasePath string
	// Config is the loaded configuration.
	Config *models.GlobalConfig
)
