package core

import "github.com/valter-silva-au/context-timer/pkg/models"

// SessionAction is a command understood by SessionTracker.Apply. The set of
// implementations is closed.
type SessionAction interface {
	sessionAction()
}

// StartTaskAction starts a regular task and logs a context switch.
type StartTaskAction struct{ TaskID int64 }

// StopSessionAction stops one session.
type StopSessionAction struct{ SessionID int64 }

// SwitchToAction stops running regular tasks and starts TaskID.
type SwitchToAction struct{ TaskID int64 }

// StartWorkDayAction starts or resumes today's Work Day.
type StartWorkDayAction struct{}

// StopWorkDayAction stops the Work Day and every other running session.
type StopWorkDayAction struct{}

// StartLunchAction starts Lunch.
type StartLunchAction struct{}

// EndLunchAction stops Lunch.
type EndLunchAction struct{}

// StartBreakAction starts Break.
type StartBreakAction struct{}

// EndBreakAction stops Break.
type EndBreakAction struct{}

// StopAllRegularAction stops every running non-special session.
type StopAllRegularAction struct{}

func (StartTaskAction) sessionAction()      {}
func (StopSessionAction) sessionAction()    {}
func (SwitchToAction) sessionAction()       {}
func (StartWorkDayAction) sessionAction()   {}
func (StopWorkDayAction) sessionAction()    {}
func (StartLunchAction) sessionAction()     {}
func (EndLunchAction) sessionAction()       {}
func (StartBreakAction) sessionAction()     {}
func (EndBreakAction) sessionAction()       {}
func (StopAllRegularAction) sessionAction() {}

// ActionResult reports what an action changed. Session is the session the
// action was about: the one started, resumed, or stopped.
type ActionResult struct {
	Started []int64               `json:"started,omitempty"`
	Stopped []int64               `json:"stopped,omitempty"`
	Switch  *models.ContextSwitch `json:"switch,omitempty"`
	Session *models.TimerSession  `json:"session,omitempty"`
}

// SpecialState is a snapshot of the reserved timers.
type SpecialState struct {
	WorkDay        *models.TimerSession `json:"work_day,omitempty"`
	Lunch          *models.TimerSession `json:"lunch,omitempty"`
	Break          *models.TimerSession `json:"break,omitempty"`
	LunchAvailable bool                 `json:"lunch_available"`
	BreakAvailable bool                 `json:"break_available"`
}
