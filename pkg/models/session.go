package models

import "time"

// TimerSession is one continuous timed interval against a task. A nil EndTime
// means the session is running; DurationSeconds is set iff EndTime is set.
type TimerSession struct {
	ID              int64      `json:"id" yaml:"id"`
	TaskID          int64      `json:"task_id" yaml:"task_id"`
	StartTime       time.Time  `json:"start_time" yaml:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty" yaml:"duration_seconds,omitempty"`

	// Joined from the tasks table when available.
	TaskName  string  `json:"task_name,omitempty" yaml:"task_name,omitempty"`
	TaskColor *string `json:"task_color,omitempty" yaml:"task_color,omitempty"`
}

// IsRunning reports whether the session has not been stopped.
func (s TimerSession) IsRunning() bool {
	return s.EndTime == nil
}

// ContextSwitch is a logged transition from one task (or none) to another.
type ContextSwitch struct {
	ID         int64     `json:"id" yaml:"id"`
	FromTaskID *int64    `json:"from_task_id,omitempty" yaml:"from_task_id,omitempty"`
	ToTaskID   int64     `json:"to_task_id" yaml:"to_task_id"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

// Setting is a persisted key/value preference.
type Setting struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// ExpectedStartTimeKey holds the "HH:MM" time after which launching the
// application starts the Work Day automatically.
const ExpectedStartTimeKey = "expected_start_time"
