package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event levels.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Event types written by the todo manager.
const (
	EventTodoAdded     = "todo.added"
	EventTodoCompleted = "todo.completed"
	EventTodoReopened  = "todo.reopened"
	EventTodoEdited    = "todo.edited"
	EventTodoDeleted   = "todo.deleted"
	EventTodosCleared  = "todos.cleared"
	EventLoadFailed    = "todos.load_failed"
	EventSaveFailed    = "todos.save_failed"
)

// maxEventLine bounds one JSONL record. Todo text has no length limit, so
// the scanner default of 64 KiB is not enough.
const maxEventLine = 4 << 20

// Event is one line of the todo event log. TodoID is set for events about a
// single todo and zero for list-wide ones such as todos.cleared.
type Event struct {
	ID      string         `json:"id,omitempty"`
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Type    string         `json:"type"`
	TodoID  int64          `json:"todo_id,omitempty"`
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// EventFilter selects events. Zero fields match everything.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	// Types matches any of the listed event types.
	Types  []string
	Level  string
	TodoID int64
}

// EventLog appends todo events and reads them back in write order.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

type jsonlEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLEventLog opens (or creates) an append-only JSONL log at path.
func NewJSONLEventLog(path string) (EventLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{path: path, file: f}, nil
}

// Write appends event as one line. Events without an ID get a random one.
func (l *jsonlEventLog) Write(event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Type, err)
	}
	if len(data) >= maxEventLine {
		return fmt.Errorf("encoding %s event: %d bytes exceeds the log line limit", event.Type, len(data))
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing %s event: %w", event.Type, err)
	}
	return nil
}

// Read returns the events matching filter. Lines that do not decode are
// skipped, and a missing file reads as no events.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLine)
	for scanner.Scan() {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		if filter.matches(event) {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}
	return events, nil
}

func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

func (f EventFilter) matches(event Event) bool {
	switch {
	case f.Since != nil && event.Time.Before(*f.Since):
		return false
	case f.Until != nil && event.Time.After(*f.Until):
		return false
	case len(f.Types) > 0 && !slices.Contains(f.Types, event.Type):
		return false
	case f.Level != "" && event.Level != f.Level:
		return false
	case f.TodoID != 0 && event.TodoID != f.TodoID:
		return false
	}
	return true
}

// TodoHistory returns the events recorded for one todo, oldest first.
func TodoHistory(log EventLog, id int64) ([]Event, error) {
	events, err := log.Read(EventFilter{TodoID: id})
	if err != nil {
		return nil, fmt.Errorf("reading history of todo %d: %w", id, err)
	}
	return events, nil
}
