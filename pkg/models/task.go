package models

import (
	"fmt"
	"time"
)

// CreatedAtLayout is the ISO-8601 layout used for Task.CreatedAt: millisecond
// precision, rendered in UTC with a trailing Z.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Task is a single to-do entry. Insertion order in the store is display order.
type Task struct {
	ID        int64  `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
	CreatedAt string `json:"createdAt" yaml:"created_at"`
}

// Created parses CreatedAt. The zero time is returned if it is malformed.
func (t Task) Created() time.Time {
	ts, err := time.Parse(time.RFC3339Nano, t.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// FormatCreatedAt renders ts in the CreatedAt layout, normalised to UTC.
func FormatCreatedAt(ts time.Time) string {
	return ts.UTC().Format(CreatedAtLayout)
}

// Stats holds counts derived from a task sequence.
// Total always equals Completed + Active.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
}

// ComputeStats derives Stats from the given tasks.
func ComputeStats(tasks []Task) Stats {
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return Stats{
		Total:     len(tasks),
		Completed: completed,
		Active:    len(tasks) - completed,
	}
}

// Summary returns the one-line status shown under the list.
func (s Stats) Summary() string {
	switch {
	case s.Total == 0:
		return "No todos yet"
	case s.Active == 0:
		return "All todos completed! \U0001f389"
	default:
		return fmt.Sprintf("%d item(s) left", s.Active)
	}
}

// CloneTasks returns a copy of tasks that shares no backing array with it.
// A nil or empty input yields an empty, non-nil slice.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
