package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/context-timer/internal/core"
	"github.com/valter-silva-au/context-timer/internal/observability"
	"github.com/valter-silva-au/context-timer/internal/storage"
)

// --- Fake implementations ---

type fakeMetricsCalculator struct {
	metrics *observability.Metrics
}

func (f *fakeMetricsCalculator) Calculate(_ time.Time) (*observability.Metrics, error) {
	return f.metrics, nil
}

type fakeAlertEngine struct {
	alerts []observability.Alert
}

func (f *fakeAlertEngine) Evaluate() ([]observability.Alert, error) {
	return f.alerts, nil
}

// --- Test helpers ---

var testNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	srv   *Server
	tasks core.TaskRegistry
	now   time.Time
}

// newTestEnv wires real timer services over a temporary database with the
// clock pinned to testNow.
func newTestEnv(t *testing.T, metrics observability.MetricsCalculator, alerts observability.AlertEngine) *testEnv {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "timers.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	env := &testEnv{now: testNow}
	clock := func() time.Time { return env.now }

	tasks := core.NewTaskRegistry(store, clock, nil)
	switches := core.NewSwitchLog(store, clock, nil)
	tracker := core.NewSessionTracker(store, tasks, switches, clock, time.UTC, nil)
	reports := core.NewReportAggregator(store, clock, time.UTC, nil)

	env.tasks = tasks
	env.srv = NewServer(Services{
		Tasks:       tasks,
		Tracker:     tracker,
		Reports:     reports,
		MetricsCalc: metrics,
		AlertEngine: alerts,
		Location:    time.UTC,
	}, "test")
	env.srv.now = clock
	return env
}

func (e *testEnv) mustCreate(t *testing.T, name string) int64 {
	t.Helper()
	id, err := e.tasks.Create(name, nil)
	if err != nil {
		t.Fatalf("creating %s: %v", name, err)
	}
	return id
}

// callTool is a helper that connects a client to the server and calls a tool.
func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	t1, t2 := gomcp.NewInMemoryTransports()

	// Connect server (non-blocking).
	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}

	return result
}

// decode reads a tool's structured output, falling back to its text content.
func decode(t *testing.T, result *gomcp.CallToolResult, out any) {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}
	if result.StructuredContent != nil {
		data, err := json.Marshal(result.StructuredContent)
		if err != nil {
			t.Fatalf("marshalling structured content: %v", err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("unmarshalling structured content: %v", err)
		}
		return
	}
	if err := json.Unmarshal([]byte(extractText(result)), out); err != nil {
		t.Fatalf("unmarshalling text content: %v (text was: %s)", err, extractText(result))
	}
}

func extractText(result *gomcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	if tc, ok := result.Content[0].(*gomcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

// --- Tests ---

func TestListTasks(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.mustCreate(t, "Email")
	env.mustCreate(t, "Coding")

	var out listTasksOutput
	decode(t, callTool(t, env.srv, "list_tasks", map[string]any{}), &out)

	if out.Count != 2 {
		t.Fatalf("expected 2 tasks, got %d", out.Count)
	}
	if out.Tasks[0].Name != "Coding" || out.Tasks[1].Name != "Email" {
		t.Errorf("expected alphabetical order, got %s, %s", out.Tasks[0].Name, out.Tasks[1].Name)
	}
}

func TestListTasksIncludeDeleted(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.mustCreate(t, "Coding")
	id := env.mustCreate(t, "Old")
	if err := env.tasks.Delete(id); err != nil {
		t.Fatal(err)
	}

	var active listTasksOutput
	decode(t, callTool(t, env.srv, "list_tasks", map[string]any{}), &active)
	if active.Count != 1 {
		t.Errorf("expected 1 active task, got %d", active.Count)
	}

	var all listTasksOutput
	decode(t, callTool(t, env.srv, "list_tasks", map[string]any{"include_deleted": true}), &all)
	if all.Count != 2 {
		t.Errorf("expected 2 tasks including deleted, got %d", all.Count)
	}
}

func TestCreateTask(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	var out taskOutput
	decode(t, callTool(t, env.srv, "create_task", map[string]any{"name": "Coding", "color": "#00ff00"}), &out)

	if out.Name != "Coding" || out.Color != "#00ff00" {
		t.Errorf("unexpected task %+v", out)
	}
	if !out.IsActive || out.IsSpecial {
		t.Errorf("expected active regular task, got %+v", out)
	}
}

func TestCreateTaskRejectsReservedAndDuplicate(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.mustCreate(t, "Coding")

	if r := callTool(t, env.srv, "create_task", map[string]any{"name": "Lunch"}); !r.IsError {
		t.Error("expected error for reserved name")
	}
	r := callTool(t, env.srv, "create_task", map[string]any{"name": "Coding"})
	if !r.IsError {
		t.Fatal("expected error for duplicate name")
	}
	if !strings.Contains(extractText(r), "Coding") {
		t.Errorf("error %q should name the task", extractText(r))
	}
}

func TestStartTaskAndStopSession(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	id := env.mustCreate(t, "Coding")

	var started actionOutput
	decode(t, callTool(t, env.srv, "start_task", map[string]any{"task_id": id}), &started)
	if len(started.Started) != 1 || started.Session == nil {
		t.Fatalf("expected one started session, got %+v", started)
	}
	if started.SwitchID == 0 {
		t.Error("expected a logged context switch")
	}
	if !started.Session.Running || started.Session.TaskName != "Coding" {
		t.Errorf("unexpected session %+v", started.Session)
	}

	env.now = env.now.Add(90 * time.Second)

	var active listActiveOutput
	decode(t, callTool(t, env.srv, "list_active", map[string]any{}), &active)
	if active.Count != 1 {
		t.Fatalf("expected 1 active session, got %d", active.Count)
	}
	if active.Sessions[0].Elapsed != "00:01:30" {
		t.Errorf("Elapsed = %s, want 00:01:30", active.Sessions[0].Elapsed)
	}

	var stopped actionOutput
	decode(t, callTool(t, env.srv, "stop_session", map[string]any{"session_id": started.Session.ID}), &stopped)
	if stopped.Session == nil || stopped.Session.Running {
		t.Fatalf("expected stopped session, got %+v", stopped.Session)
	}
	if stopped.Session.ElapsedSeconds != 90 {
		t.Errorf("ElapsedSeconds = %d, want 90", stopped.Session.ElapsedSeconds)
	}
}

func TestStartTaskAlreadyRunning(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	id := env.mustCreate(t, "Coding")

	callTool(t, env.srv, "start_task", map[string]any{"task_id": id})
	if r := callTool(t, env.srv, "start_task", map[string]any{"task_id": id}); !r.IsError {
		t.Error("expected error when starting a running task")
	}
}

func TestStopSessionNotFound(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	if r := callTool(t, env.srv, "stop_session", map[string]any{"session_id": 999}); !r.IsError {
		t.Error("expected error for unknown session")
	}
}

func TestSwitchTask(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	coding := env.mustCreate(t, "Coding")
	email := env.mustCreate(t, "Email")

	callTool(t, env.srv, "start_task", map[string]any{"task_id": coding})

	var out actionOutput
	decode(t, callTool(t, env.srv, "switch_task", map[string]any{"task_id": email}), &out)
	if len(out.Stopped) != 1 {
		t.Errorf("expected 1 stopped session, got %v", out.Stopped)
	}

	var active listActiveOutput
	decode(t, callTool(t, env.srv, "list_active", map[string]any{}), &active)
	if active.Count != 1 || active.Sessions[0].TaskName != "Email" {
		t.Errorf("expected only Email running, got %+v", active.Sessions)
	}
}

func TestWorkDayTools(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	coding := env.mustCreate(t, "Coding")

	var day actionOutput
	decode(t, callTool(t, env.srv, "start_work_day", map[string]any{}), &day)
	if day.Session == nil || day.Session.TaskName != "Work Day" {
		t.Fatalf("expected Work Day session, got %+v", day.Session)
	}

	callTool(t, env.srv, "start_task", map[string]any{"task_id": coding})
	env.now = env.now.Add(time.Hour)

	var stop actionOutput
	decode(t, callTool(t, env.srv, "stop_work_day", map[string]any{}), &stop)
	if len(stop.Stopped) != 2 {
		t.Errorf("expected Work Day and Coding stopped, got %v", stop.Stopped)
	}

	var active listActiveOutput
	decode(t, callTool(t, env.srv, "list_active", map[string]any{}), &active)
	if active.Count != 0 {
		t.Errorf("expected no running sessions, got %d", active.Count)
	}
}

func TestLunchAndBreakTools(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	coding := env.mustCreate(t, "Coding")

	if r := callTool(t, env.srv, "start_lunch", map[string]any{}); !r.IsError {
		t.Fatal("expected lunch to require a running work day")
	}

	var day actionOutput
	decode(t, callTool(t, env.srv, "start_work_day", map[string]any{}), &day)
	callTool(t, env.srv, "start_task", map[string]any{"task_id": coding})

	var lunch actionOutput
	decode(t, callTool(t, env.srv, "start_lunch", map[string]any{}), &lunch)
	if lunch.Session == nil || lunch.Session.TaskName != "Lunch" {
		t.Fatalf("expected Lunch session, got %+v", lunch.Session)
	}
	if len(lunch.Stopped) != 1 {
		t.Errorf("expected Coding stopped for lunch, got %v", lunch.Stopped)
	}
	if r := callTool(t, env.srv, "start_break", map[string]any{}); !r.IsError {
		t.Error("expected break to be unavailable during lunch")
	}

	var ended actionOutput
	decode(t, callTool(t, env.srv, "end_lunch", map[string]any{}), &ended)
	if len(ended.Stopped) != 1 || ended.Stopped[0] != lunch.Session.ID {
		t.Errorf("expected lunch stopped, got %v", ended.Stopped)
	}

	var brk actionOutput
	decode(t, callTool(t, env.srv, "start_break", map[string]any{}), &brk)
	if brk.Session == nil || brk.Session.TaskName != "Break" {
		t.Fatalf("expected Break session, got %+v", brk.Session)
	}
	decode(t, callTool(t, env.srv, "end_break", map[string]any{}), &ended)
	if r := callTool(t, env.srv, "end_break", map[string]any{}); !r.IsError {
		t.Error("expected error ending a break that is not running")
	}
}

func TestStopSessionOnWorkDayCascades(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	var day actionOutput
	decode(t, callTool(t, env.srv, "start_work_day", map[string]any{}), &day)
	decode(t, callTool(t, env.srv, "start_lunch", map[string]any{}), &actionOutput{})

	var stop actionOutput
	decode(t, callTool(t, env.srv, "stop_session", map[string]any{"session_id": day.Session.ID}), &stop)
	if len(stop.Stopped) != 2 {
		t.Errorf("expected Work Day and Lunch stopped, got %v", stop.Stopped)
	}

	var active listActiveOutput
	decode(t, callTool(t, env.srv, "list_active", map[string]any{}), &active)
	if active.Count != 0 {
		t.Errorf("expected no running sessions, got %d", active.Count)
	}
}

func TestDailySummary(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	coding := env.mustCreate(t, "Coding")

	var started actionOutput
	decode(t, callTool(t, env.srv, "start_task", map[string]any{"task_id": coding}), &started)
	env.now = env.now.Add(45 * time.Minute)
	callTool(t, env.srv, "stop_session", map[string]any{"session_id": started.Session.ID})

	var out dailySummaryOutput
	decode(t, callTool(t, env.srv, "daily_summary", map[string]any{"date": "2025-01-15"}), &out)

	if out.Date != "2025-01-15" {
		t.Errorf("Date = %s", out.Date)
	}
	if out.TotalSeconds != 2700 || out.Total != "00:45:00" {
		t.Errorf("total = %d (%s), want 2700 (00:45:00)", out.TotalSeconds, out.Total)
	}
	if len(out.Tasks) != 1 || out.Tasks[0].Name != "Coding" {
		t.Errorf("unexpected breakdown %+v", out.Tasks)
	}
	if out.TotalSwitches != 1 {
		t.Errorf("TotalSwitches = %d, want 1", out.TotalSwitches)
	}

	var empty dailySummaryOutput
	decode(t, callTool(t, env.srv, "daily_summary", map[string]any{"date": "2025-01-14"}), &empty)
	if empty.TotalSeconds != 0 || len(empty.Tasks) != 0 {
		t.Errorf("expected empty day, got %+v", empty)
	}
}

func TestDailySummaryInvalidDate(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	if r := callTool(t, env.srv, "daily_summary", map[string]any{"date": "15/01/2025"}); !r.IsError {
		t.Error("expected error for malformed date")
	}
}

func TestWeeklySummary(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	coding := env.mustCreate(t, "Coding")

	var started actionOutput
	decode(t, callTool(t, env.srv, "start_task", map[string]any{"task_id": coding}), &started)
	env.now = env.now.Add(7 * time.Hour)
	callTool(t, env.srv, "stop_session", map[string]any{"session_id": started.Session.ID})

	var out weeklySummaryOutput
	decode(t, callTool(t, env.srv, "weekly_summary", map[string]any{}), &out)

	// 2025-01-15 is a Wednesday.
	if out.WeekStart != "2025-01-13" || out.WeekEnd != "2025-01-19" {
		t.Errorf("week = %s..%s, want 2025-01-13..2025-01-19", out.WeekStart, out.WeekEnd)
	}
	if len(out.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(out.Days))
	}
	if out.Days[2].Seconds != 25200 {
		t.Errorf("Wednesday seconds = %d, want 25200", out.Days[2].Seconds)
	}
	if out.AverageSeconds != 3600 {
		t.Errorf("AverageSeconds = %d, want 3600", out.AverageSeconds)
	}
}

func TestGetMetrics(t *testing.T) {
	oldest := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	calc := &fakeMetricsCalculator{metrics: &observability.Metrics{
		TasksCreated:    2,
		SessionsStarted: 5,
		SessionsStopped: 4,
		SwitchesLogged:  3,
		TrackedSeconds:  7200,
		SecondsByTask:   map[string]int64{"Coding": 7200},
		EventCount:      14,
		OldestEvent:     &oldest,
	}}
	env := newTestEnv(t, calc, nil)

	var out metricsOutput
	decode(t, callTool(t, env.srv, "get_metrics", map[string]any{"since": "30d"}), &out)

	if out.SessionsStarted != 5 || out.TrackedSeconds != 7200 {
		t.Errorf("unexpected metrics %+v", out)
	}
	if out.SecondsByTask["Coding"] != 7200 {
		t.Errorf("SecondsByTask = %v", out.SecondsByTask)
	}
	if out.OldestEvent != "2025-01-10T08:00:00Z" {
		t.Errorf("OldestEvent = %s", out.OldestEvent)
	}
}

func TestGetMetricsUnavailable(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	if r := callTool(t, env.srv, "get_metrics", map[string]any{}); !r.IsError {
		t.Error("expected error when metrics are disabled")
	}
}

func TestGetMetricsInvalidSince(t *testing.T) {
	env := newTestEnv(t, &fakeMetricsCalculator{metrics: &observability.Metrics{}}, nil)
	if r := callTool(t, env.srv, "get_metrics", map[string]any{"since": "7w"}); !r.IsError {
		t.Error("expected error for unsupported suffix")
	}
}

func TestGetAlerts(t *testing.T) {
	engine := &fakeAlertEngine{alerts: []observability.Alert{{
		ID:          "long-session-1",
		Condition:   "session_running_too_long",
		Severity:    observability.SeverityHigh,
		Message:     "Coding has been running for more than 10 hours",
		TriggeredAt: testNow,
	}}}
	env := newTestEnv(t, nil, engine)

	var out getAlertsOutput
	decode(t, callTool(t, env.srv, "get_alerts", map[string]any{}), &out)

	if out.Count != 1 || out.Alerts[0].Severity != "high" {
		t.Errorf("unexpected alerts %+v", out)
	}
}

func TestGetAlertsUnavailable(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	if r := callTool(t, env.srv, "get_alerts", map[string]any{}); !r.IsError {
		t.Error("expected error when alerts are disabled")
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"7d", now.AddDate(0, 0, -7), false},
		{"24h", now.Add(-24 * time.Hour), false},
		{"d", time.Time{}, true},
		{"xd", time.Time{}, true},
		{"3w", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSince(tt.in, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSince(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("parseSince(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewServerDefaults(t *testing.T) {
	srv := NewServer(Services{}, "")
	if srv.MCPServer() == nil {
		t.Fatal("expected underlying server")
	}
	if srv.svc.Location != time.Local {
		t.Errorf("Location = %v, want time.Local", srv.svc.Location)
	}
}
