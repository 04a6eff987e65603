package models

import "time"

// TaskBreakdown aggregates the sessions of one task inside a report window.
type TaskBreakdown struct {
	TaskID       int64  `json:"task_id" yaml:"task_id"`
	Name         string `json:"name" yaml:"name"`
	TotalSeconds int64  `json:"total_seconds" yaml:"total_seconds"`
	SessionCount int    `json:"session_count" yaml:"session_count"`
}

// DailySummary is the report for one local calendar day.
type DailySummary struct {
	Date          time.Time       `json:"date" yaml:"date"`
	Start         time.Time       `json:"start" yaml:"start"`
	End           time.Time       `json:"end" yaml:"end"`
	Tasks         []TaskBreakdown `json:"tasks" yaml:"tasks"`
	TotalSeconds  int64           `json:"total_seconds" yaml:"total_seconds"`
	TotalSwitches int             `json:"total_switches" yaml:"total_switches"`
}

// DaySummary is one row of a weekly report.
type DaySummary struct {
	Date      time.Time `json:"date" yaml:"date"`
	Seconds   int64     `json:"seconds" yaml:"seconds"`
	TaskCount int       `json:"task_count" yaml:"task_count"`
	Switches  int       `json:"switches" yaml:"switches"`
}

// WeeklySummary covers Monday through Sunday. AverageSeconds always divides
// by seven, regardless of how many days have data.
type WeeklySummary struct {
	WeekStart      time.Time    `json:"week_start" yaml:"week_start"`
	WeekEnd        time.Time    `json:"week_end" yaml:"week_end"`
	Days           []DaySummary `json:"days" yaml:"days"`
	TotalSeconds   int64        `json:"total_seconds" yaml:"total_seconds"`
	TotalSwitches  int          `json:"total_switches" yaml:"total_switches"`
	AverageSeconds int64        `json:"average_seconds" yaml:"average_seconds"`
}
