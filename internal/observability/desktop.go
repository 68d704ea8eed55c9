package observability

import (
	"fmt"
	"strings"

	"github.com/gen2brain/beeep"
	"github.com/valter-silva-au/todo/pkg/models"
)

const desktopTitle = "todo"

// DesktopNotifier shows notifications through the operating system's
// notification centre.
type DesktopNotifier struct {
	send func(title, message string, icon any) error
}

// NewDesktopNotifier creates a DesktopNotifier backed by beeep.
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{send: beeep.Notify}
}

// Announce shows a single notification.
func (d *DesktopNotifier) Announce(title, message string) error {
	if err := d.send(title, message, ""); err != nil {
		return fmt.Errorf("sending desktop notification: %w", err)
	}
	return nil
}

// Notify shows one notification summarising alerts. Nothing is shown for an
// empty slice.
func (d *DesktopNotifier) Notify(alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	lines := make([]string, 0, len(alerts))
	for _, a := range alerts {
		lines = append(lines, a.Message)
	}
	return d.Announce(fmt.Sprintf("%s: %d alert(s)", desktopTitle, len(alerts)), strings.Join(lines, "\n"))
}

// NewCompletionWatcher returns a todo listener that calls announce once each
// time the list goes from having open todos to having none. The first call
// only records the starting state.
func NewCompletionWatcher(announce func(title, message string) error) func([]models.Task) {
	seeded := false
	lastActive := 0
	return func(todos []models.Task) {
		stats := models.ComputeStats(todos)
		fire := seeded && lastActive > 0 && stats.Active == 0 && stats.Total > 0
		seeded = true
		lastActive = stats.Active
		if fire {
			_ = announce(desktopTitle, "All todos completed! \U0001f389") // Non-fatal.
		}
	}
}
