package observability

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// Event levels. Timer events are INFO; WARN and ERROR mark events written
// when a timer operation misbehaved.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Timer event types, as emitted by the core services.
const (
	TypeTaskCreated        = "task.created"
	TypeTaskUpdated        = "task.updated"
	TypeTaskDeleted        = "task.deleted"
	TypeSessionStarted     = "session.started"
	TypeSessionStopped     = "session.stopped"
	TypeSessionReopened    = "session.reopened"
	TypeSwitchLogged       = "switch.logged"
	TypeHistoryCleared     = "history.cleared"
	TypeWorkDayAutoStarted = "workday.auto_started"
)

// maxEventLine bounds a single JSONL record.
const maxEventLine = 1 << 20

// Event is one line of the timer event log.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Type    string         `json:"type"`
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// SessionID returns the session_id carried by session and auto-start events.
func (e Event) SessionID() (int64, bool) {
	return intField(e.Data, "session_id")
}

// TaskName returns the task_name carried by session events, or "".
func (e Event) TaskName() string {
	name, _ := e.Data["task_name"].(string)
	return name
}

// EventFilter selects events on Read. Zero fields match everything. Type and
// Types combine: an event matches if its type is Type or any of Types.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	Type  string
	Types []string
	Level string
}

// EventLog appends timer events and reads them back in write order.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

type jsonlEventLog struct {
	path string
	now  func() time.Time

	mu   sync.Mutex
	file *os.File
}

// NewJSONLEventLog opens (or creates) the append-only event log at path.
func NewJSONLEventLog(path string) (EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{path: path, now: time.Now, file: f}, nil
}

// Write appends event as one JSON line. A zero Time is stamped with the
// current time and an empty Level becomes INFO.
func (l *jsonlEventLog) Write(event Event) error {
	if event.Time.IsZero() {
		event.Time = l.now().UTC()
	}
	if event.Level == "" {
		event.Level = LevelInfo
	}
	if event.Message == "" {
		event.Message = event.Type
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Type, err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return fmt.Errorf("writing %s event: %w", event.Type, fs.ErrClosed)
	}
	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("writing %s event: %w", event.Type, err)
	}
	return nil
}

// Read returns the events matching filter in write order. Lines that do not
// decode are skipped.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
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
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
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

// Close closes the log file. Closing twice is a no-op.
func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

func (f EventFilter) matches(event Event) bool {
	if f.Since != nil && event.Time.Before(*f.Since) {
		return false
	}
	if f.Until != nil && event.Time.After(*f.Until) {
		return false
	}
	if f.Type != "" || len(f.Types) > 0 {
		if event.Type != f.Type && !slices.Contains(f.Types, event.Type) {
			return false
		}
	}
	if f.Level != "" && event.Level != f.Level {
		return false
	}
	return true
}
