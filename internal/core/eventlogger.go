package core

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// WarnLogger is implemented by event loggers that can record WARN-level
// events. The manager falls back to LogEvent when it is not available.
type WarnLogger interface {
	LogWarning(eventType string, data map[string]any) error
}
