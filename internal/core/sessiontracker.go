package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

// SessionTracker starts and stops timer sessions and owns the rules for the
// reserved Work Day, Lunch, and Break tasks. A task has at most one running
// session at a time.
type SessionTracker interface {
	// Start opens a session for an existing task that is not already running.
	Start(taskID int64) (int64, error)
	// Stop closes a session. Stopping a stopped session returns it unchanged.
	Stop(sessionID int64) (*models.TimerSession, error)
	ListActive() ([]models.TimerSession, error)
	Get(sessionID int64) (*models.TimerSession, error)
	// GetOrCreateWorkDaySessionForToday reopens the latest session of taskID
	// started today, or starts a new one.
	GetOrCreateWorkDaySessionForToday(taskID int64) (int64, error)

	StartWorkDay() (ActionResult, error)
	// StopWorkDay stops the Work Day and then every other running session.
	StopWorkDay() (ActionResult, error)
	StartLunch() (ActionResult, error)
	EndLunch() (ActionResult, error)
	StartBreak() (ActionResult, error)
	EndBreak() (ActionResult, error)
	StopAllRegular() (ActionResult, error)
	SpecialState() (SpecialState, error)

	// StartTask starts a regular task and logs a switch from the most
	// recently started running regular task.
	StartTask(taskID int64) (ActionResult, error)
	// SwitchTo stops every running regular task and starts taskID.
	SwitchTo(taskID int64) (ActionResult, error)

	Apply(action SessionAction) (ActionResult, error)
}

type sessionTracker struct {
	sessions    SessionStore
	tasks       TaskRegistry
	switches    SwitchLog
	clock       Clock
	loc         *time.Location
	eventLogger EventLogger
}

// NewSessionTracker creates a SessionTracker. loc defines calendar days for
// the Work Day reopen rule; nil means time.Local. clock and eventLogger may
// be nil.
func NewSessionTracker(sessions SessionStore, tasks TaskRegistry, switches SwitchLog, clock Clock, loc *time.Location, eventLogger EventLogger) SessionTracker {
	if loc == nil {
		loc = time.Local
	}
	return &sessionTracker{
		sessions:    sessions,
		tasks:       tasks,
		switches:    switches,
		clock:       clock,
		loc:         loc,
		eventLogger: eventLogger,
	}
}

func (t *sessionTracker) Start(taskID int64) (int64, error) {
	task, err := t.tasks.Get(taskID)
	if err != nil {
		return 0, fmt.Errorf("starting task %d: %w", taskID, err)
	}

	running, err := t.runningForTask(taskID)
	if err != nil {
		return 0, fmt.Errorf("starting task %d: %w", taskID, err)
	}
	if running != nil {
		return 0, fmt.Errorf("starting %q: session %d: %w", task.Name, running.ID, models.ErrAlreadyRunning)
	}

	start := t.clock.now().UTC()
	id, err := t.sessions.InsertSession(taskID, start)
	if err != nil {
		return 0, fmt.Errorf("starting task %d: %w", taskID, err)
	}

	emit(t.eventLogger, EventSessionStarted, map[string]any{
		"session_id": id,
		"task_id":    taskID,
		"task_name":  task.Name,
	})
	return id, nil
}

func (t *sessionTracker) Stop(sessionID int64) (*models.TimerSession, error) {
	session, err := t.sessions.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("stopping session: %w", err)
	}
	if !session.IsRunning() {
		return session, nil
	}

	end := t.clock.now().UTC()
	duration := ElapsedSeconds(*session, end)
	if err := t.sessions.FinishSession(sessionID, end, duration); err != nil {
		return nil, fmt.Errorf("stopping session: %w", err)
	}
	session.EndTime = &end
	session.DurationSeconds = &duration

	emit(t.eventLogger, EventSessionStopped, map[string]any{
		"session_id":       sessionID,
		"task_id":          session.TaskID,
		"task_name":        session.TaskName,
		"duration_seconds": duration,
	})
	return session, nil
}

func (t *sessionTracker) ListActive() ([]models.TimerSession, error) {
	sessions, err := t.sessions.ListActiveSessions()
	if err != nil {
		return nil, fmt.Errorf("listing active sessions: %w", err)
	}
	return sessions, nil
}

func (t *sessionTracker) Get(sessionID int64) (*models.TimerSession, error) {
	session, err := t.sessions.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return session, nil
}

func (t *sessionTracker) GetOrCreateWorkDaySessionForToday(taskID int64) (int64, error) {
	start, end := DayBounds(t.clock.now(), t.loc)

	latest, err := t.sessions.LatestSessionForTaskInRange(taskID, start, end)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return t.Start(taskID)
		}
		return 0, fmt.Errorf("finding today's session: %w", err)
	}
	if latest.IsRunning() {
		return latest.ID, nil
	}

	if err := t.sessions.ReopenSession(latest.ID); err != nil {
		return 0, fmt.Errorf("reopening session: %w", err)
	}
	emit(t.eventLogger, EventSessionReopened, map[string]any{
		"session_id": latest.ID,
		"task_id":    taskID,
		"task_name":  latest.TaskName,
	})
	return latest.ID, nil
}

func (t *sessionTracker) StartWorkDay() (ActionResult, error) {
	task, err := t.tasks.EnsureSpecial(models.SpecialWorkDay)
	if err != nil {
		return ActionResult{}, fmt.Errorf("starting work day: %w", err)
	}

	running, err := t.runningForTask(task.ID)
	if err != nil {
		return ActionResult{}, fmt.Errorf("starting work day: %w", err)
	}
	if running != nil {
		return ActionResult{Session: running}, nil
	}

	id, err := t.GetOrCreateWorkDaySessionForToday(task.ID)
	if err != nil {
		return ActionResult{}, fmt.Errorf("starting work day: %w", err)
	}
	return t.startedResult(id)
}

func (t *sessionTracker) StopWorkDay() (ActionResult, error) {
	active, err := t.ListActive()
	if err != nil {
		return ActionResult{}, fmt.Errorf("stopping work day: %w", err)
	}

	workDay := findSpecial(active, models.SpecialWorkDay)
	if workDay == nil {
		return ActionResult{}, fmt.Errorf("stopping work day: %w", models.ErrNotRunning)
	}

	var result ActionResult
	stopped, err := t.Stop(workDay.ID)
	if err != nil {
		return result, fmt.Errorf("stopping work day: %w", err)
	}
	result.Session = stopped
	result.Stopped = append(result.Stopped, workDay.ID)

	for _, s := range active {
		if s.ID == workDay.ID {
			continue
		}
		if _, err := t.Stop(s.ID); err != nil {
			return result, fmt.Errorf("stopping work day: %w", err)
		}
		result.Stopped = append(result.Stopped, s.ID)
	}
	return result, nil
}

func (t *sessionTracker) StartLunch() (ActionResult, error) {
	return t.startPause(models.SpecialLunch, models.SpecialBreak)
}

func (t *sessionTracker) StartBreak() (ActionResult, error) {
	return t.startPause(models.SpecialBreak, models.SpecialLunch)
}

func (t *sessionTracker) EndLunch() (ActionResult, error) {
	return t.endPause(models.SpecialLunch)
}

func (t *sessionTracker) EndBreak() (ActionResult, error) {
	return t.endPause(models.SpecialBreak)
}

// startPause starts Lunch or Break. The Work Day must be running and the
// other pause must not be; running regular tasks are stopped first.
func (t *sessionTracker) startPause(kind, other models.SpecialKind) (ActionResult, error) {
	op := "starting " + kind.Name()

	active, err := t.ListActive()
	if err != nil {
		return ActionResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if findSpecial(active, models.SpecialWorkDay) == nil {
		return ActionResult{}, fmt.Errorf("%s: work day is not running: %w", op, models.ErrSpecialUnavailable)
	}
	if s := findSpecial(active, kind); s != nil {
		return ActionResult{}, fmt.Errorf("%s: session %d: %w", op, s.ID, models.ErrAlreadyRunning)
	}
	if findSpecial(active, other) != nil {
		return ActionResult{}, fmt.Errorf("%s: %s is running: %w", op, other.Name(), models.ErrSpecialUnavailable)
	}

	task, err := t.tasks.EnsureSpecial(kind)
	if err != nil {
		return ActionResult{}, fmt.Errorf("%s: %w", op, err)
	}

	stopped, err := t.stopRegular(active)
	if err != nil {
		return ActionResult{Stopped: stopped}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := t.Start(task.ID)
	if err != nil {
		return ActionResult{Stopped: stopped}, fmt.Errorf("%s: %w", op, err)
	}
	result, err := t.startedResult(id)
	result.Stopped = stopped
	return result, err
}

func (t *sessionTracker) endPause(kind models.SpecialKind) (ActionResult, error) {
	op := "ending " + kind.Name()

	active, err := t.ListActive()
	if err != nil {
		return ActionResult{}, fmt.Errorf("%s: %w", op, err)
	}
	running := findSpecial(active, kind)
	if running == nil {
		return ActionResult{}, fmt.Errorf("%s: %w", op, models.ErrNotRunning)
	}

	stopped, err := t.Stop(running.ID)
	if err != nil {
		return ActionResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return ActionResult{Stopped: []int64{running.ID}, Session: stopped}, nil
}

func (t *sessionTracker) StopAllRegular() (ActionResult, error) {
	active, err := t.ListActive()
	if err != nil {
		return ActionResult{}, fmt.Errorf("stopping all timers: %w", err)
	}
	stopped, err := t.stopRegular(active)
	if err != nil {
		return ActionResult{Stopped: stopped}, fmt.Errorf("stopping all timers: %w", err)
	}
	return ActionResult{Stopped: stopped}, nil
}

func (t *sessionTracker) SpecialState() (SpecialState, error) {
	active, err := t.ListActive()
	if err != nil {
		return SpecialState{}, fmt.Errorf("reading special timers: %w", err)
	}

	state := SpecialState{
		WorkDay: findSpecial(active, models.SpecialWorkDay),
		Lunch:   findSpecial(active, models.SpecialLunch),
		Break:   findSpecial(active, models.SpecialBreak),
	}
	idle := state.Lunch == nil && state.Break == nil
	state.LunchAvailable = state.WorkDay != nil && idle
	state.BreakAvailable = state.WorkDay != nil && idle
	return state, nil
}

func (t *sessionTracker) StartTask(taskID int64) (ActionResult, error) {
	task, err := t.tasks.Get(taskID)
	if err != nil {
		return ActionResult{}, fmt.Errorf("starting task: %w", err)
	}
	if task.IsSpecial() {
		return ActionResult{}, fmt.Errorf("starting %q: %w", task.Name, models.ErrReservedTask)
	}

	active, err := t.ListActive()
	if err != nil {
		return ActionResult{}, fmt.Errorf("starting task: %w", err)
	}
	from := lastRegularTask(active)

	id, err := t.Start(taskID)
	if err != nil {
		return ActionResult{}, err
	}
	result, err := t.startedResult(id)
	if err != nil {
		return result, err
	}

	sw, err := t.switches.Log(from, taskID)
	if err != nil {
		return result, fmt.Errorf("starting task: %w", err)
	}
	result.Switch = sw
	return result, nil
}

func (t *sessionTracker) SwitchTo(taskID int64) (ActionResult, error) {
	task, err := t.tasks.Get(taskID)
	if err != nil {
		return ActionResult{}, fmt.Errorf("switching task: %w", err)
	}
	if task.IsSpecial() {
		return ActionResult{}, fmt.Errorf("switching to %q: %w", task.Name, models.ErrReservedTask)
	}

	active, err := t.ListActive()
	if err != nil {
		return ActionResult{}, fmt.Errorf("switching task: %w", err)
	}
	from := lastRegularTask(active)

	stopped, err := t.stopRegular(active)
	if err != nil {
		return ActionResult{Stopped: stopped}, fmt.Errorf("switching task: %w", err)
	}

	id, err := t.Start(taskID)
	if err != nil {
		return ActionResult{Stopped: stopped}, err
	}
	result, err := t.startedResult(id)
	result.Stopped = stopped
	if err != nil {
		return result, err
	}

	sw, err := t.switches.Log(from, taskID)
	if err != nil {
		return result, fmt.Errorf("switching task: %w", err)
	}
	result.Switch = sw
	return result, nil
}

func (t *sessionTracker) Apply(action SessionAction) (ActionResult, error) {
	switch a := action.(type) {
	case StartTaskAction:
		return t.StartTask(a.TaskID)
	case StopSessionAction:
		return t.stopSession(a.SessionID)
	case SwitchToAction:
		return t.SwitchTo(a.TaskID)
	case StartWorkDayAction:
		return t.StartWorkDay()
	case StopWorkDayAction:
		return t.StopWorkDay()
	case StartLunchAction:
		return t.StartLunch()
	case EndLunchAction:
		return t.EndLunch()
	case StartBreakAction:
		return t.StartBreak()
	case EndBreakAction:
		return t.EndBreak()
	case StopAllRegularAction:
		return t.StopAllRegular()
	case nil:
		return ActionResult{}, fmt.Errorf("applying session action: nil action")
	}
	return ActionResult{}, fmt.Errorf("applying session action: unsupported %T", action)
}

// stopSession stops a session by id. Stopping the Work Day cascades like
// StopWorkDay, and Lunch or Break end through the pause rules.
func (t *sessionTracker) stopSession(id int64) (ActionResult, error) {
	session, err := t.sessions.GetSession(id)
	if err != nil {
		return ActionResult{}, fmt.Errorf("stopping session: %w", err)
	}
	if session.IsRunning() {
		switch kind, _ := models.SpecialKindForName(session.TaskName); kind {
		case models.SpecialWorkDay:
			return t.StopWorkDay()
		case models.SpecialLunch, models.SpecialBreak:
			return t.endPause(kind)
		}
	}

	stopped, err := t.Stop(id)
	if err != nil {
		return ActionResult{}, err
	}
	return ActionResult{Stopped: []int64{id}, Session: stopped}, nil
}

// startedResult loads a freshly started or resumed session into a result.
func (t *sessionTracker) startedResult(id int64) (ActionResult, error) {
	result := ActionResult{Started: []int64{id}}
	session, err := t.sessions.GetSession(id)
	if err != nil {
		return result, fmt.Errorf("loading session %d: %w", id, err)
	}
	result.Session = session
	return result, nil
}

// stopRegular stops every non-special session in active and returns the
// ids stopped so far, even on error.
func (t *sessionTracker) stopRegular(active []models.TimerSession) ([]int64, error) {
	var stopped []int64
	for _, s := range active {
		if isSpecialSession(s) {
			continue
		}
		if _, err := t.Stop(s.ID); err != nil {
			return stopped, err
		}
		stopped = append(stopped, s.ID)
	}
	return stopped, nil
}

func (t *sessionTracker) runningForTask(taskID int64) (*models.TimerSession, error) {
	active, err := t.sessions.ListActiveSessions()
	if err != nil {
		return nil, err
	}
	for i := range active {
		if active[i].TaskID == taskID {
			return &active[i], nil
		}
	}
	return nil, nil
}

func isSpecialSession(s models.TimerSession) bool {
	_, ok := models.SpecialKindForName(s.TaskName)
	return ok
}

func findSpecial(active []models.TimerSession, kind models.SpecialKind) *models.TimerSession {
	for i := range active {
		if active[i].TaskName == kind.Name() {
			return &active[i]
		}
	}
	return nil
}

// lastRegularTask returns the task of the most recently started running
// regular session. active is in chronological order.
func lastRegularTask(active []models.TimerSession) *int64 {
	for i := len(active) - 1; i >= 0; i-- {
		if !isSpecialSession(active[i]) {
			id := active[i].TaskID
			return &id
		}
	}
	return nil
}
