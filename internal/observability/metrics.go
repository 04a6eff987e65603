package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	TasksCreated     int              `json:"tasks_created" yaml:"tasks_created"`
	TasksDeleted     int              `json:"tasks_deleted" yaml:"tasks_deleted"`
	SessionsStarted  int              `json:"sessions_started" yaml:"sessions_started"`
	SessionsStopped  int              `json:"sessions_stopped" yaml:"sessions_stopped"`
	SessionsReopened int              `json:"sessions_reopened" yaml:"sessions_reopened"`
	SwitchesLogged   int              `json:"switches_logged" yaml:"switches_logged"`
	HistoryCleared   int              `json:"history_cleared" yaml:"history_cleared"`
	AutoStarts       int              `json:"auto_starts" yaml:"auto_starts"`
	TrackedSeconds   int64            `json:"tracked_seconds" yaml:"tracked_seconds"`
	SecondsByTask    map[string]int64 `json:"seconds_by_task" yaml:"seconds_by_task"`
	EventCount       int              `json:"event_count" yaml:"event_count"`
	OldestEvent      *time.Time       `json:"oldest_event,omitempty" yaml:"oldest_event,omitempty"`
	NewestEvent      *time.Time       `json:"newest_event,omitempty" yaml:"newest_event,omitempty"`
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
// Tracked time is the sum of duration_seconds over session.stopped events.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		SecondsByTask: make(map[string]int64),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case TypeTaskCreated:
			m.TasksCreated++
		case TypeTaskDeleted:
			m.TasksDeleted++
		case TypeSessionStarted:
			m.SessionsStarted++
		case TypeSessionStopped:
			m.SessionsStopped++
			secs, ok := intField(event.Data, "duration_seconds")
			if !ok {
				continue
			}
			m.TrackedSeconds += secs
			if name := event.TaskName(); name != "" {
				m.SecondsByTask[name] += secs
			}
		case TypeSessionReopened:
			m.SessionsReopened++
		case TypeSwitchLogged:
			m.SwitchesLogged++
		case TypeHistoryCleared:
			m.HistoryCleared++
		case TypeWorkDayAutoStarted:
			m.AutoStarts++
		}
	}

	return m, nil
}

// intField reads an integer from event data. Values decoded from JSON arrive
// as float64; values written in-process keep their Go type.
func intField(data map[string]any, key string) (int64, bool) {
	switch v := data[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}
