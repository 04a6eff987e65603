// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the context timer as MCP tools, so an assistant can start, stop, and
// summarize timers on the user's behalf.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/context-timer/internal/core"
	"github.com/valter-silva-au/context-timer/internal/observability"
	"github.com/valter-silva-au/context-timer/pkg/models"
)

// Services are the timer services the MCP tools call into. MetricsCalc and
// AlertEngine may be nil if observability is disabled. A nil Location means
// time.Local.
type Services struct {
	Tasks       core.TaskRegistry
	Tracker     core.SessionTracker
	Reports     core.ReportAggregator
	MetricsCalc observability.MetricsCalculator
	AlertEngine observability.AlertEngine
	Location    *time.Location
}

// Server wraps the timer services and exposes them as MCP tools.
type Server struct {
	server *gomcp.Server
	svc    Services
	now    func() time.Time
}

// NewServer creates a new MCP server over the given services.
func NewServer(svc Services, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if svc.Location == nil {
		svc.Location = time.Local
	}

	s := &Server{svc: svc, now: time.Now}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "ctimer", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskOutput struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	IsActive  bool   `json:"is_active"`
	IsSpecial bool   `json:"is_special"`
	CreatedAt string `json:"created_at"`
}

type listTasksInput struct {
	IncludeDeleted bool `json:"include_deleted,omitempty" jsonschema:"also list soft-deleted tasks"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type createTaskInput struct {
	Name  string `json:"name" jsonschema:"the task name; must be unique"`
	Color string `json:"color,omitempty" jsonschema:"optional display color such as #4a90d9"`
}

type taskIDInput struct {
	TaskID int64 `json:"task_id" jsonschema:"the numeric task id"`
}

type sessionIDInput struct {
	SessionID int64 `json:"session_id" jsonschema:"the numeric session id"`
}

type sessionOutput struct {
	ID             int64  `json:"id"`
	TaskID         int64  `json:"task_id"`
	TaskName       string `json:"task_name"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time,omitempty"`
	ElapsedSeconds int64  `json:"elapsed_seconds"`
	Elapsed        string `json:"elapsed"`
	Running        bool   `json:"running"`
}

type actionOutput struct {
	Message  string         `json:"message"`
	Started  []int64        `json:"started,omitempty"`
	Stopped  []int64        `json:"stopped,omitempty"`
	SwitchID int64          `json:"switch_id,omitempty"`
	Session  *sessionOutput `json:"session,omitempty"`
}

type emptyInput struct{}

type listActiveOutput struct {
	Sessions []sessionOutput `json:"sessions"`
	Count    int             `json:"count"`
}

type dateInput struct {
	Date string `json:"date,omitempty" jsonschema:"a date as YYYY-MM-DD; defaults to today"`
}

type taskBreakdownOutput struct {
	TaskID       int64  `json:"task_id"`
	Name         string `json:"name"`
	Seconds      int64  `json:"seconds"`
	Duration     string `json:"duration"`
	SessionCount int    `json:"session_count"`
}

type dailySummaryOutput struct {
	Date          string                `json:"date"`
	Tasks         []taskBreakdownOutput `json:"tasks"`
	TotalSeconds  int64                 `json:"total_seconds"`
	Total         string                `json:"total"`
	TotalSwitches int                   `json:"total_switches"`
}

type dayOutput struct {
	Date      string `json:"date"`
	Seconds   int64  `json:"seconds"`
	Duration  string `json:"duration"`
	TaskCount int    `json:"task_count"`
	Switches  int    `json:"switches"`
}

type weeklySummaryOutput struct {
	WeekStart      string      `json:"week_start"`
	WeekEnd        string      `json:"week_end"`
	Days           []dayOutput `json:"days"`
	TotalSeconds   int64       `json:"total_seconds"`
	Total          string      `json:"total"`
	AverageSeconds int64       `json:"average_seconds"`
	TotalSwitches  int         `json:"total_switches"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated    int              `json:"tasks_created"`
	SessionsStarted int              `json:"sessions_started"`
	SessionsStopped int              `json:"sessions_stopped"`
	SwitchesLogged  int              `json:"switches_logged"`
	TrackedSeconds  int64            `json:"tracked_seconds"`
	SecondsByTask   map[string]int64 `json:"seconds_by_task"`
	EventCount      int              `json:"event_count"`
	OldestEvent     string           `json:"oldest_event,omitempty"`
	NewestEvent     string           `json:"newest_event,omitempty"`
}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List timeable tasks alphabetically, including the reserved Work Day, Lunch and Break tasks.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_task",
		Description: "Create a new task. Names must be unique and cannot be Work Day, Lunch or Break.",
	}, s.handleCreateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "start_task",
		Description: "Start a timer for a task alongside any running timers and log a context switch.",
	}, s.handleStartTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "switch_task",
		Description: "Stop every running regular task, then start the given task and log a context switch.",
	}, s.handleSwitchTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "stop_session",
		Description: "Stop a running timer session by id. Stopping an already stopped session changes nothing.",
	}, s.handleStopSession)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_active",
		Description: "List running timer sessions with their elapsed time.",
	}, s.handleListActive)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "start_work_day",
		Description: "Start today's Work Day, or resume it if it was stopped earlier today.",
	}, s.handleStartWorkDay)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "stop_work_day",
		Description: "Stop the Work Day together with every other running timer.",
	}, s.handleStopWorkDay)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "start_lunch",
		Description: "Start Lunch. Requires a running Work Day and no Break; running regular tasks are stopped.",
	}, s.handleStartLunch)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "end_lunch",
		Description: "End the running Lunch.",
	}, s.handleEndLunch)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "start_break",
		Description: "Start a Break. Requires a running Work Day and no Lunch; running regular tasks are stopped.",
	}, s.handleStartBreak)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "end_break",
		Description: "End the running Break.",
	}, s.handleEndBreak)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "daily_summary",
		Description: "Summarize one calendar day: time per task, total time and context switches.",
	}, s.handleDailySummary)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "weekly_summary",
		Description: "Summarize the Monday-to-Sunday week containing the given date.",
	}, s.handleWeeklySummary)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log: sessions, switches and tracked time.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (long-running sessions, too many context switches).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	tasks, err := s.svc.Tasks.List(!input.IncludeDeleted)
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), listTasksOutput{}, nil
	}

	out := listTasksOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t)
	}
	return nil, out, nil
}

func (s *Server) handleCreateTask(_ context.Context, _ *gomcp.CallToolRequest, input createTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.Name == "" {
		return errorResult("name is required"), taskOutput{}, nil
	}

	var color *string
	if input.Color != "" {
		color = &input.Color
	}
	id, err := s.svc.Tasks.Create(input.Name, color)
	if err != nil {
		return errorResult(err.Error()), taskOutput{}, nil
	}
	task, err := s.svc.Tasks.Get(id)
	if err != nil {
		return errorResult(err.Error()), taskOutput{}, nil
	}
	return nil, taskToOutput(*task), nil
}

func (s *Server) handleStartTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, actionOutput, error) {
	return s.apply(core.StartTaskAction{TaskID: input.TaskID}, "task started")
}

func (s *Server) handleSwitchTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, actionOutput, error) {
	return s.apply(core.SwitchToAction{TaskID: input.TaskID}, "switched task")
}

func (s *Server) handleStopSession(_ context.Context, _ *gomcp.CallToolRequest, input sessionIDInput) (*gomcp.CallToolResult, actionOutput, error) {
	return s.apply(core.StopSessionAction{SessionID: input.SessionID}, "session stopped")
}

func (s *Server) handleStartWorkDay(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, actionOutput, error) {
	return s.apply(core.StartWorkDayAction{}, "work day started")
}

func (s *Server) handleStopWorkDay(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, actionOutput, error) {
	return s.apply(core.StopWorkDayAction{}, "work day stopped")
}

func (s *Server) handleStartLunch(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, actionOutput, error) {
	return s.apply(core.StartLunchAction{}, "lunch started")
}

func (s *Server) handleEndLunch(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, actionOutput, error) {
	return s.apply(core.EndLunchAction{}, "lunch ended")
}

func (s *Server) handleStartBreak(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, actionOutput, error) {
	return s.apply(core.StartBreakAction{}, "break started")
}

func (s *Server) handleEndBreak(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, actionOutput, error) {
	return s.apply(core.EndBreakAction{}, "break ended")
}

func (s *Server) handleListActive(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, listActiveOutput, error) {
	sessions, err := s.svc.Tracker.ListActive()
	if err != nil {
		return errorResult(fmt.Sprintf("listing active sessions: %s", err)), listActiveOutput{}, nil
	}

	now := s.now()
	out := listActiveOutput{
		Sessions: make([]sessionOutput, len(sessions)),
		Count:    len(sessions),
	}
	for i, session := range sessions {
		out.Sessions[i] = sessionToOutput(session, now, s.svc.Location)
	}
	return nil, out, nil
}

func (s *Server) handleDailySummary(_ context.Context, _ *gomcp.CallToolRequest, input dateInput) (*gomcp.CallToolResult, dailySummaryOutput, error) {
	day, err := s.parseDate(input.Date)
	if err != nil {
		return errorResult(err.Error()), dailySummaryOutput{}, nil
	}

	summary, err := s.svc.Reports.DailySummary(day)
	if err != nil {
		return errorResult(fmt.Sprintf("building daily summary: %s", err)), dailySummaryOutput{}, nil
	}

	out := dailySummaryOutput{
		Date:          summary.Date.Format("2006-01-02"),
		Tasks:         make([]taskBreakdownOutput, len(summary.Tasks)),
		TotalSeconds:  summary.TotalSeconds,
		Total:         core.FormatDuration(summary.TotalSeconds),
		TotalSwitches: summary.TotalSwitches,
	}
	for i, b := range summary.Tasks {
		out.Tasks[i] = taskBreakdownOutput{
			TaskID:       b.TaskID,
			Name:         b.Name,
			Seconds:      b.TotalSeconds,
			Duration:     core.FormatDuration(b.TotalSeconds),
			SessionCount: b.SessionCount,
		}
	}
	return nil, out, nil
}

func (s *Server) handleWeeklySummary(_ context.Context, _ *gomcp.CallToolRequest, input dateInput) (*gomcp.CallToolResult, weeklySummaryOutput, error) {
	day, err := s.parseDate(input.Date)
	if err != nil {
		return errorResult(err.Error()), weeklySummaryOutput{}, nil
	}

	summary, err := s.svc.Reports.WeeklySummary(day)
	if err != nil {
		return errorResult(fmt.Sprintf("building weekly summary: %s", err)), weeklySummaryOutput{}, nil
	}

	out := weeklySummaryOutput{
		WeekStart:      summary.WeekStart.Format("2006-01-02"),
		WeekEnd:        summary.WeekEnd.Format("2006-01-02"),
		Days:           make([]dayOutput, len(summary.Days)),
		TotalSeconds:   summary.TotalSeconds,
		Total:          core.FormatDuration(summary.TotalSeconds),
		AverageSeconds: summary.AverageSeconds,
		TotalSwitches:  summary.TotalSwitches,
	}
	for i, d := range summary.Days {
		out.Days[i] = dayOutput{
			Date:      d.Date.Format("2006-01-02"),
			Seconds:   d.Seconds,
			Duration:  core.FormatDuration(d.Seconds),
			TaskCount: d.TaskCount,
			Switches:  d.Switches,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.svc.MetricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr, s.now())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.svc.MetricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksCreated:    metrics.TasksCreated,
		SessionsStarted: metrics.SessionsStarted,
		SessionsStopped: metrics.SessionsStopped,
		SwitchesLogged:  metrics.SwitchesLogged,
		TrackedSeconds:  metrics.TrackedSeconds,
		SecondsByTask:   metrics.SecondsByTask,
		EventCount:      metrics.EventCount,
	}
	if out.SecondsByTask == nil {
		out.SecondsByTask = make(map[string]int64)
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.svc.AlertEngine == nil {
		return errorResult("alert engine not available (observability may be disabled)"), getAlertsOutput{}, nil
	}

	alerts, err := s.svc.AlertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

// apply runs a session action and renders its result.
func (s *Server) apply(action core.SessionAction, message string) (*gomcp.CallToolResult, actionOutput, error) {
	result, err := s.svc.Tracker.Apply(action)
	if err != nil {
		return errorResult(err.Error()), actionOutput{}, nil
	}

	out := actionOutput{
		Message: message,
		Started: result.Started,
		Stopped: result.Stopped,
	}
	if result.Switch != nil {
		out.SwitchID = result.Switch.ID
	}
	if result.Session != nil {
		session := sessionToOutput(*result.Session, s.now(), s.svc.Location)
		out.Session = &session
	}
	return nil, out, nil
}

// parseDate reads YYYY-MM-DD in the server's location; empty means today.
func (s *Server) parseDate(date string) (time.Time, error) {
	if date == "" {
		return s.now().In(s.svc.Location), nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, s.svc.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}
	return day, nil
}

func taskToOutput(t models.Task) taskOutput {
	return taskOutput{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.ColorOr(""),
		IsActive:  t.IsActive,
		IsSpecial: t.IsSpecial(),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func sessionToOutput(session models.TimerSession, now time.Time, loc *time.Location) sessionOutput {
	elapsed := core.ElapsedSeconds(session, now)
	out := sessionOutput{
		ID:             session.ID,
		TaskID:         session.TaskID,
		TaskName:       session.TaskName,
		StartTime:      session.StartTime.In(loc).Format(time.RFC3339),
		ElapsedSeconds: elapsed,
		Elapsed:        core.FormatDuration(elapsed),
		Running:        session.IsRunning(),
	}
	if session.EndTime != nil {
		out.EndTime = session.EndTime.In(loc).Format(time.RFC3339)
	}
	return out
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{SecondsByTask: make(map[string]int64)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time before now.
func parseSince(s string, now time.Time) (time.Time, error) {
	now = now.UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
