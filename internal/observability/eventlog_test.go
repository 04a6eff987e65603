package observability

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestEventLog(t *testing.T) EventLog {
	t.Helper()
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func writeEvents(t *testing.T, log EventLog, events ...Event) {
	t.Helper()
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}
}

func TestEventLog_WriteAndRead(t *testing.T) {
	log := newTestEventLog(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	writeEvents(t, log,
		Event{
			Time:    now,
			Level:   LevelInfo,
			Type:    "session.started",
			Message: "session started",
			Data:    map[string]any{"session_id": 1, "task_name": "Coding"},
		},
		Event{
			Time:    now.Add(time.Second),
			Level:   LevelWarn,
			Type:    "switch.logged",
			Message: "switch logged",
			Data:    map[string]any{"switch_id": 1, "to_task_id": 2},
		},
	)

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result))
	}
	if result[0].Type != "session.started" {
		t.Errorf("expected type session.started, got %s", result[0].Type)
	}
	if result[0].Message != "session started" {
		t.Errorf("expected message 'session started', got %s", result[0].Message)
	}
	if !result[0].Time.Equal(now) {
		t.Errorf("time = %v, want %v", result[0].Time, now)
	}
	if name, _ := result[0].Data["task_name"].(string); name != "Coding" {
		t.Errorf("task_name = %v, want Coding", result[0].Data["task_name"])
	}
	// Numbers come back from JSON as float64.
	if id, _ := result[0].Data["session_id"].(float64); id != 1 {
		t.Errorf("session_id = %v, want 1", result[0].Data["session_id"])
	}
	if result[1].Level != LevelWarn {
		t.Errorf("expected level WARN, got %s", result[1].Level)
	}
}

func TestEventLog_FilterByType(t *testing.T) {
	log := newTestEventLog(t)

	now := time.Now().UTC()
	writeEvents(t, log,
		Event{Time: now, Level: LevelInfo, Type: "session.started", Message: "started"},
		Event{Time: now.Add(time.Second), Level: LevelInfo, Type: "session.stopped", Message: "stopped"},
		Event{Time: now.Add(2 * time.Second), Level: LevelInfo, Type: "session.started", Message: "started again"},
	)

	result, err := log.Read(EventFilter{Type: "session.started"})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 events of type session.started, got %d", len(result))
	}
	for _, e := range result {
		if e.Type != "session.started" {
			t.Errorf("expected type session.started, got %s", e.Type)
		}
	}
}

func TestEventLog_FilterByTimeRange(t *testing.T) {
	log := newTestEventLog(t)

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	writeEvents(t, log,
		Event{Time: base, Level: LevelInfo, Type: "switch.logged", Message: "first"},
		Event{Time: base.Add(time.Hour), Level: LevelInfo, Type: "switch.logged", Message: "second"},
		Event{Time: base.Add(2 * time.Hour), Level: LevelInfo, Type: "switch.logged", Message: "third"},
		Event{Time: base.Add(3 * time.Hour), Level: LevelInfo, Type: "switch.logged", Message: "fourth"},
	)

	since := base.Add(30 * time.Minute)
	until := base.Add(2*time.Hour + 30*time.Minute)
	result, err := log.Read(EventFilter{Since: &since, Until: &until})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 events in time range, got %d", len(result))
	}
	if result[0].Message != "second" {
		t.Errorf("expected 'second', got %s", result[0].Message)
	}
	if result[1].Message != "third" {
		t.Errorf("expected 'third', got %s", result[1].Message)
	}
}

func TestEventLog_FilterByLevel(t *testing.T) {
	log := newTestEventLog(t)

	now := time.Now().UTC()
	writeEvents(t, log,
		Event{Time: now, Level: LevelInfo, Type: "task.created", Message: "info event"},
		Event{Time: now.Add(time.Second), Level: LevelWarn, Type: "session.stopped", Message: "warn event"},
		Event{Time: now.Add(2 * time.Second), Level: LevelError, Type: "session.started", Message: "error event"},
		Event{Time: now.Add(3 * time.Second), Level: LevelWarn, Type: "history.cleared", Message: "another warn"},
	)

	result, err := log.Read(EventFilter{Level: LevelWarn})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 WARN events, got %d", len(result))
	}
	for _, e := range result {
		if e.Level != LevelWarn {
			t.Errorf("expected level WARN, got %s", e.Level)
		}
	}
}

func TestEventLog_EmptyLog(t *testing.T) {
	log := newTestEventLog(t)

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading empty log: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected 0 events from empty log, got %d", len(result))
	}
}

func TestEventLog_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	content := `{"time":"2025-01-15T10:00:00Z","level":"INFO","type":"task.created","msg":"ok"}
not json at all

{"time":"2025-01-15T11:00:00Z","level":"INFO","type":"task.deleted","msg":"ok"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 valid events, got %d", len(result))
	}
	if result[1].Type != "task.deleted" {
		t.Errorf("second event type = %s, want task.deleted", result[1].Type)
	}
}

func TestEventLog_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected event log file to exist: %v", err)
	}
}

func TestEventLog_AppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	first, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	writeEvents(t, first, Event{Time: time.Now().UTC(), Level: LevelInfo, Type: "task.created", Message: "one"})
	if err := first.Close(); err != nil {
		t.Fatalf("closing event log: %v", err)
	}

	second, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("reopening event log: %v", err)
	}
	defer second.Close()
	writeEvents(t, second, Event{Time: time.Now().UTC(), Level: LevelInfo, Type: "task.created", Message: "two"})

	result, err := second.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 events after reopen, got %d", len(result))
	}
}

func TestEventLog_ConcurrentWrites(t *testing.T) {
	log := newTestEventLog(t)

	const goroutines = 10
	const eventsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < eventsPerGoroutine; i++ {
				event := Event{
					Time:    time.Now().UTC(),
					Level:   LevelInfo,
					Type:    "switch.logged",
					Message: "concurrent event",
					Data:    map[string]any{"goroutine": id, "index": i},
				}
				if err := log.Write(event); err != nil {
					t.Errorf("concurrent write error: %v", err)
				}
			}
		}(g)
	}

	wg.Wait()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events after concurrent writes: %v", err)
	}

	expected := goroutines * eventsPerGoroutine
	if len(result) != expected {
		t.Errorf("expected %d events, got %d", expected, len(result))
	}
}

func TestEventLog_WriteFillsDefaults(t *testing.T) {
	log := newTestEventLog(t)
	at := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	log.(*jsonlEventLog).now = func() time.Time { return at }

	writeEvents(t, log, Event{Type: TypeSwitchLogged, Data: map[string]any{"to_task_id": 2}})

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 event, got %d", len(result))
	}
	e := result[0]
	if !e.Time.Equal(at) {
		t.Errorf("time = %v, want %v", e.Time, at)
	}
	if e.Level != LevelInfo {
		t.Errorf("level = %q, want %q", e.Level, LevelInfo)
	}
	if e.Message != TypeSwitchLogged {
		t.Errorf("message = %q, want %q", e.Message, TypeSwitchLogged)
	}
}

func TestEventLog_FilterByTypes(t *testing.T) {
	log := newTestEventLog(t)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	writeEvents(t, log,
		Event{Time: now, Type: TypeTaskCreated},
		Event{Time: now, Type: TypeSessionStarted, Data: map[string]any{"session_id": 4, "task_name": "Coding"}},
		Event{Time: now, Type: TypeSwitchLogged},
		Event{Time: now, Type: TypeSessionStopped, Data: map[string]any{"session_id": 4}},
	)

	result, err := log.Read(EventFilter{Types: []string{TypeSessionStarted, TypeSessionStopped}})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 session events, got %d", len(result))
	}
	if id, ok := result[0].SessionID(); !ok || id != 4 {
		t.Errorf("SessionID() = (%d, %v), want (4, true)", id, ok)
	}
	if name := result[0].TaskName(); name != "Coding" {
		t.Errorf("TaskName() = %q, want Coding", name)
	}
	if name := result[1].TaskName(); name != "" {
		t.Errorf("TaskName() = %q, want empty", name)
	}

	result, err = log.Read(EventFilter{Type: TypeTaskCreated, Types: []string{TypeSwitchLogged}})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("expected Type and Types to combine, got %d events", len(result))
	}
}

func TestEventLog_WriteAfterClose(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("closing event log: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
	if err := log.Write(Event{Type: TypeTaskCreated}); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("Write() after Close = %v, want fs.ErrClosed", err)
	}
}
