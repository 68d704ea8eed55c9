package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/todo/internal/observability"
)

func withEventLog(t *testing.T, events ...observability.Event) {
	t.Helper()
	log, err := observability.NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatal(err)
		}
	}
	orig := EventLog
	EventLog = log
	t.Cleanup(func() {
		EventLog = orig
		_ = log.Close()
	})
}

func TestHistoryCmd_NilEventLog(t *testing.T) {
	orig := EventLog
	defer func() { EventLog = orig }()
	EventLog = nil

	err := historyCmd.RunE(historyCmd, []string{"1"})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected not initialized error, got %v", err)
	}
}

func TestHistoryCmd_InvalidID(t *testing.T) {
	withEventLog(t)
	if err := historyCmd.RunE(historyCmd, []string{"abc"}); err == nil {
		t.Fatal("expected error for invalid id")
	}
}

func TestHistoryCmd_ShowsOneTodo(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	withEventLog(t,
		observability.Event{Time: base, Level: observability.LevelInfo, Type: observability.EventTodoAdded, TodoID: 42, Data: map[string]any{"text": "buy milk"}},
		observability.Event{Time: base.Add(time.Minute), Level: observability.LevelInfo, Type: observability.EventTodoAdded, TodoID: 43, Data: map[string]any{"text": "other"}},
		observability.Event{Time: base.Add(2 * time.Minute), Level: observability.LevelInfo, Type: observability.EventTodoDeleted, TodoID: 42, Data: map[string]any{"reason": "blank_edit"}},
	)

	output := captureStdout(t, func() {
		if err := historyCmd.RunE(historyCmd, []string{"42"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	if !strings.Contains(output, `"buy milk"`) || !strings.Contains(output, "(blank_edit)") {
		t.Errorf("missing history details:\n%s", output)
	}
	if strings.Contains(output, "other") {
		t.Errorf("history leaked another todo's events:\n%s", output)
	}
	if strings.Index(output, "todo.added") > strings.Index(output, "todo.deleted") {
		t.Errorf("history should be oldest first:\n%s", output)
	}
}

func TestHistoryCmd_Empty(t *testing.T) {
	withEventLog(t)

	output := captureStdout(t, func() {
		if err := historyCmd.RunE(historyCmd, []string{"7"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(output, "No history for todo 7.") {
		t.Errorf("output = %q", output)
	}
}

func TestHistoryCmd_JSON(t *testing.T) {
	withEventLog(t, observability.Event{Time: time.Now(), Level: observability.LevelInfo, Type: observability.EventTodoCompleted, TodoID: 5})
	origJSON := historyJSON
	defer func() { historyJSON = origJSON }()
	historyJSON = true

	output := captureStdout(t, func() {
		if err := historyCmd.RunE(historyCmd, []string{"5"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	var events []observability.Event
	if err := json.Unmarshal([]byte(output), &events); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, output)
	}
	if len(events) != 1 || events[0].TodoID != 5 {
		t.Errorf("unexpected events: %+v", events)
	}
}
