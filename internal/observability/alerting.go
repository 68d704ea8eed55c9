package observability

import (
	"fmt"
	"sort"
	"time"

	"github.com/valter-silva-au/todo/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire. Zero disables a check.
type AlertThresholds struct {
	StaleDays int `yaml:"stale_days" json:"stale_days"`
	MaxActive int `yaml:"max_active" json:"max_active"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		StaleDays: 7,
		MaxActive: 50,
	}
}

// TodoSource is the read side of the todo manager the alert engine needs.
type TodoSource interface {
	GetAllTodos() []models.Task
}

// AlertEngine evaluates alert conditions against the current todo list.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

type alertEngine struct {
	source     TodoSource
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates a new AlertEngine reading todos from source.
func NewAlertEngine(source TodoSource, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		source:     source,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// Evaluate checks all alert conditions and returns the triggered alerts,
// oldest stale todo first.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	if ae.source == nil {
		return nil, fmt.Errorf("evaluating alerts: no todo source")
	}

	now := ae.now().UTC()
	todos := ae.source.GetAllTodos()

	alerts := ae.checkStaleTodos(todos, now)
	alerts = append(alerts, ae.checkActiveCount(todos, now)...)
	return alerts, nil
}

// checkStaleTodos looks for active todos created longer ago than the threshold.
func (ae *alertEngine) checkStaleTodos(todos []models.Task, now time.Time) []Alert {
	if ae.thresholds.StaleDays <= 0 {
		return nil
	}
	threshold := time.Duration(ae.thresholds.StaleDays) * 24 * time.Hour

	type stale struct {
		task    models.Task
		created time.Time
	}
	var found []stale
	for _, t := range todos {
		created := t.Created()
		if t.Completed || created.IsZero() {
			continue
		}
		if now.Sub(created) > threshold {
			found = append(found, stale{task: t, created: created})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].created.Before(found[j].created)
	})

	alerts := make([]Alert, 0, len(found))
	for _, s := range found {
		alerts = append(alerts, Alert{
			ID:          fmt.Sprintf("stale-%d", s.task.ID),
			Condition:   "stale_todo",
			Severity:    SeverityMedium,
			Message:     fmt.Sprintf("todo %d %q has been open for more than %d days", s.task.ID, s.task.Text, ae.thresholds.StaleDays),
			TriggeredAt: now,
		})
	}
	return alerts
}

// checkActiveCount alerts when more todos are open than the threshold allows.
func (ae *alertEngine) checkActiveCount(todos []models.Task, now time.Time) []Alert {
	if ae.thresholds.MaxActive <= 0 {
		return nil
	}
	active := models.ComputeStats(todos).Active
	if active <= ae.thresholds.MaxActive {
		return nil
	}
	return []Alert{{
		ID:          "too-many-active",
		Condition:   "too_many_active",
		Severity:    SeverityLow,
		Message:     fmt.Sprintf("%d todos are open, exceeding the maximum of %d", active, ae.thresholds.MaxActive),
		TriggeredAt: now,
	}}
}
