package core

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Event types emitted by core services.
const (
	EventTaskCreated        = "task.created"
	EventTaskUpdated        = "task.updated"
	EventTaskDeleted        = "task.deleted"
	EventSessionStarted     = "session.started"
	EventSessionStopped     = "session.stopped"
	EventSessionReopened    = "session.reopened"
	EventSwitchLogged       = "switch.logged"
	EventHistoryCleared     = "history.cleared"
	EventWorkDayAutoStarted = "workday.auto_started"
)

// emit logs an event when logger is non-nil. Failures are dropped: the event
// log is never allowed to fail a timer operation.
func emit(logger EventLogger, eventType string, data map[string]any) {
	if logger != nil {
		_ = logger.LogEvent(eventType, data)
	}
}
