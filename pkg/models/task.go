package models

import "time"

// Reserved task names. These are ordinary task rows whose running sessions
// follow the Work Day / Lunch / Break exclusivity rules.
const (
	WorkDayTaskName = "Work Day"
	LunchTaskName   = "Lunch"
	BreakTaskName   = "Break"
)

// SpecialKind identifies one of the reserved tasks.
type SpecialKind string

const (
	SpecialWorkDay SpecialKind = "work_day"
	SpecialLunch   SpecialKind = "lunch"
	SpecialBreak   SpecialKind = "break"
)

// Name returns the reserved task name for the kind.
func (k SpecialKind) Name() string {
	switch k {
	case SpecialWorkDay:
		return WorkDayTaskName
	case SpecialLunch:
		return LunchTaskName
	case SpecialBreak:
		return BreakTaskName
	}
	return ""
}

// Color returns the fixed display color of the reserved task.
func (k SpecialKind) Color() string {
	switch k {
	case SpecialWorkDay:
		return "#2ecc71"
	case SpecialLunch, SpecialBreak:
		return "#f39c12"
	}
	return ""
}

// SpecialKindForName maps a task name to its reserved kind.
func SpecialKindForName(name string) (SpecialKind, bool) {
	switch name {
	case WorkDayTaskName:
		return SpecialWorkDay, true
	case LunchTaskName:
		return SpecialLunch, true
	case BreakTaskName:
		return SpecialBreak, true
	}
	return "", false
}

// Task is a user-defined activity that can be timed. Tasks are never removed;
// deleting one clears IsActive so historical sessions keep their reference.
type Task struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Color     *string   `json:"color,omitempty" yaml:"color,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	IsActive  bool      `json:"is_active" yaml:"is_active"`
}

// ColorOr returns the task color or the fallback when none is set.
func (t Task) ColorOr(fallback string) string {
	if t.Color == nil || *t.Color == "" {
		return fallback
	}
	return *t.Color
}

// IsSpecial reports whether the task is one of the reserved tasks.
func (t Task) IsSpecial() bool {
	_, ok := SpecialKindForName(t.Name)
	return ok
}
