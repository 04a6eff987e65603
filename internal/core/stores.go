package core

import (
	"time"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// TaskStore is the subset of storage.Store that TaskRegistry needs.
// Defining it here keeps core independent of the storage package.
type TaskStore interface {
	CreateTask(name string, color *string, createdAt time.Time) (int64, error)
	ListTasks(activeOnly bool) ([]models.Task, error)
	GetTask(id int64) (*models.Task, error)
	GetTaskByName(name string) (*models.Task, error)
	UpdateTask(id int64, name *string, color *string) error
	SetTaskActive(id int64, active bool) error
}

// SessionStore is the subset of storage.Store that SessionTracker needs.
type SessionStore interface {
	InsertSession(taskID int64, start time.Time) (int64, error)
	FinishSession(id int64, end time.Time, durationSeconds int64) error
	ReopenSession(id int64) error
	GetSession(id int64) (*models.TimerSession, error)
	ListActiveSessions() ([]models.TimerSession, error)
	ListSessionsInRange(start, end time.Time) ([]models.TimerSession, error)
	LatestSessionForTaskInRange(taskID int64, start, end time.Time) (*models.TimerSession, error)
}

// SwitchStore is the subset of storage.Store that SwitchLog needs.
type SwitchStore interface {
	InsertSwitch(from *int64, to int64, at time.Time) (int64, error)
	ListSwitchesInRange(start, end time.Time) ([]models.ContextSwitch, error)
}

// SettingStore is the subset of storage.Store used for preferences.
type SettingStore interface {
	GetSetting(key string) (string, bool, error)
	SetSetting(key, value string) error
	ListSettings() ([]models.Setting, error)
}

// HistoryStore is the subset of storage.Store used to clear history.
type HistoryStore interface {
	DeleteHistoryInRange(start, end time.Time) (int, error)
	DeleteAllHistory() (int, error)
}
