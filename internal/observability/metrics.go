package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	TodosAdded     int        `json:"todos_added"`
	TodosCompleted int        `json:"todos_completed"`
	TodosReopened  int        `json:"todos_reopened"`
	TodosEdited    int        `json:"todos_edited"`
	TodosDeleted   int        `json:"todos_deleted"`
	TodosCleared   int        `json:"todos_cleared"`
	StorageErrors  int        `json:"storage_errors"`
	EventCount     int        `json:"event_count"`
	OldestEvent    *time.Time `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{EventCount: len(events)}

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventTodoAdded:
			m.TodosAdded++
		case EventTodoCompleted:
			m.TodosCompleted++
		case EventTodoReopened:
			m.TodosReopened++
		case EventTodoEdited:
			m.TodosEdited++
		case EventTodoDeleted:
			m.TodosDeleted++
		case EventTodosCleared:
			m.TodosCleared += intFromData(event.Data, "removed")
		case EventLoadFailed, EventSaveFailed:
			m.StorageErrors++
		}
	}

	return m, nil
}

// intFromData reads a numeric field that survived a JSON round trip.
func intFromData(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}
