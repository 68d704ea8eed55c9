package observability

import (
	"testing"
	"time"
)

func writeEvents(t *testing.T, log EventLog, events []Event) {
	t.Helper()
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}
}

func TestMetricsCalculator_Calculate(t *testing.T) {
	log, _ := newTestEventLog(t)

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	writeEvents(t, log, []Event{
		{Time: base, Level: LevelInfo, Type: "todo.added", Data: map[string]any{"id": 1}},
		{Time: base.Add(time.Hour), Level: LevelInfo, Type: "todo.added", Data: map[string]any{"id": 2}},
		{Time: base.Add(2 * time.Hour), Level: LevelInfo, Type: "todo.completed", Data: map[string]any{"id": 1}},
		{Time: base.Add(3 * time.Hour), Level: LevelInfo, Type: "todo.reopened", Data: map[string]any{"id": 1}},
		{Time: base.Add(4 * time.Hour), Level: LevelInfo, Type: "todo.edited", Data: map[string]any{"id": 2}},
		{Time: base.Add(5 * time.Hour), Level: LevelInfo, Type: "todos.cleared", Data: map[string]any{"removed": 3}},
		{Time: base.Add(6 * time.Hour), Level: LevelInfo, Type: "todo.deleted", Data: map[string]any{"id": 2}},
		{Time: base.Add(7 * time.Hour), Level: LevelWarn, Type: "todos.save_failed"},
		{Time: base.Add(8 * time.Hour), Level: LevelWarn, Type: "todos.load_failed"},
	})

	m, err := NewMetricsCalculator(log).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}

	checks := []struct {
		name      string
		got, want int
	}{
		{"added", m.TodosAdded, 2},
		{"completed", m.TodosCompleted, 1},
		{"reopened", m.TodosReopened, 1},
		{"edited", m.TodosEdited, 1},
		{"deleted", m.TodosDeleted, 1},
		{"cleared", m.TodosCleared, 3},
		{"storage errors", m.StorageErrors, 2},
		{"events", m.EventCount, 9},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	if m.OldestEvent == nil || !m.OldestEvent.Equal(base) {
		t.Errorf("expected oldest event at %v, got %v", base, m.OldestEvent)
	}
	expectedNewest := base.Add(8 * time.Hour)
	if m.NewestEvent == nil || !m.NewestEvent.Equal(expectedNewest) {
		t.Errorf("expected newest event at %v, got %v", expectedNewest, m.NewestEvent)
	}
}

func TestMetricsCalculator_EmptyLog(t *testing.T) {
	log, _ := newTestEventLog(t)

	m, err := NewMetricsCalculator(log).Calculate(time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.TodosAdded != 0 || m.EventCount != 0 {
		t.Errorf("expected zero metrics, got %+v", m)
	}
	if m.OldestEvent != nil {
		t.Errorf("expected nil oldest event, got %v", m.OldestEvent)
	}
}

func TestMetricsCalculator_FiltersBySince(t *testing.T) {
	log, _ := newTestEventLog(t)

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	writeEvents(t, log, []Event{
		{Time: base, Level: LevelInfo, Type: "todo.added"},
		{Time: base.Add(48 * time.Hour), Level: LevelInfo, Type: "todo.added"},
	})

	m, err := NewMetricsCalculator(log).Calculate(base.Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.TodosAdded != 1 {
		t.Errorf("expected 1 todo added after since filter, got %d", m.TodosAdded)
	}
	if m.EventCount != 1 {
		t.Errorf("expected 1 event after since filter, got %d", m.EventCount)
	}
}

func TestIntFromData(t *testing.T) {
	data := map[string]any{"f": float64(4), "i": 5, "i64": int64(6), "s": "7"}
	tests := map[string]int{"f": 4, "i": 5, "i64": 6, "s": 0, "missing": 0}
	for key, want := range tests {
		if got := intFromData(data, key); got != want {
			t.Errorf("intFromData(%q) = %d, want %d", key, got, want)
		}
	}
}
