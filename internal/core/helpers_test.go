package core

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/valter-silva-au/context-timer/internal/storage"
)

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock { return &testClock{now: now} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// recordingLogger captures emitted event types.
type recordingLogger struct {
	mu     sync.Mutex
	events []string
	data   []map[string]any
}

func (l *recordingLogger) LogEvent(eventType string, data map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, eventType)
	l.data = append(l.data, data)
	return nil
}

func (l *recordingLogger) count(eventType string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e == eventType {
			n++
		}
	}
	return n
}

type testServices struct {
	store    *storage.Store
	clock    *testClock
	events   *recordingLogger
	tasks    TaskRegistry
	switches SwitchLog
	tracker  SessionTracker
	reports  ReportAggregator
	auto     AutoStarter
}

// testLoc is a fixed zone so day boundaries do not depend on the machine.
var testLoc = time.FixedZone("UTC+2", 2*3600)

func newTestServices(t *testing.T, now time.Time) *testServices {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "timers.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := newTestClock(now)
	events := &recordingLogger{}
	tasks := NewTaskRegistry(store, clock.Now, events)
	switches := NewSwitchLog(store, clock.Now, events)
	tracker := NewSessionTracker(store, tasks, switches, clock.Now, testLoc, events)
	return &testServices{
		store:    store,
		clock:    clock,
		events:   events,
		tasks:    tasks,
		switches: switches,
		tracker:  tracker,
		reports:  NewReportAggregator(store, clock.Now, testLoc, events),
		auto:     NewAutoStarter(store, tracker, testLoc, events),
	}
}

func (s *testServices) mustCreate(t *testing.T, name string) int64 {
	t.Helper()
	id, err := s.tasks.Create(name, nil)
	if err != nil {
		t.Fatalf("creating %s: %v", name, err)
	}
	return id
}

func (s *testServices) mustStart(t *testing.T, taskID int64) int64 {
	t.Helper()
	id, err := s.tracker.Start(taskID)
	if err != nil {
		t.Fatalf("starting task %d: %v", taskID, err)
	}
	return id
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
