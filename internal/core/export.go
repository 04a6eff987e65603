package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

const (
	// ReportDateLayout renders dates in report headers, e.g. "Jan 11, 2026".
	ReportDateLayout = "Jan 02, 2006"
	csvTimeLayout    = "2006-01-02 15:04:05"
)

// Export kinds used in file names.
const (
	ExportSessions = "sessions"
	ExportDaily    = "daily"
	ExportWeekly   = "weekly"
)

var sessionsCSVHeader = []string{"Task Name", "Start Time", "End Time", "Duration (seconds)", "Duration (HH:MM:SS)"}

// WriteSessionsCSV writes one row per session. Times are rendered in the
// location of now; running sessions show "Running" and their elapsed time.
func WriteSessionsCSV(w io.Writer, sessions []models.TimerSession, now time.Time) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sessionsCSVHeader); err != nil {
		return fmt.Errorf("writing sessions header: %w", err)
	}

	loc := now.Location()
	for _, s := range sessions {
		name := s.TaskName
		if name == "" {
			name = "Unknown"
		}
		end := "Running"
		if s.EndTime != nil {
			end = s.EndTime.In(loc).Format(csvTimeLayout)
		}
		elapsed := ElapsedSeconds(s, now)
		row := []string{
			name,
			s.StartTime.In(loc).Format(csvTimeLayout),
			end,
			strconv.FormatInt(elapsed, 10),
			FormatDuration(elapsed),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing session %d: %w", s.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteDailyCSV writes the daily report: a summary block followed by the
// per-task breakdown.
func WriteDailyCSV(w io.Writer, summary *models.DailySummary) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"Context Timer - Daily Report"},
		{"Date: " + summary.Date.Format(ReportDateLayout)},
		{},
		{"Summary"},
		{"Total Tasks Worked On", strconv.Itoa(len(summary.Tasks))},
		{"Total Context Switches", strconv.Itoa(summary.TotalSwitches)},
		{"Total Time Worked", FormatDuration(summary.TotalSeconds)},
		{},
		{"Task", "Time Spent", "Sessions"},
	}
	for _, t := range summary.Tasks {
		rows = append(rows, []string{t.Name, FormatDuration(t.TotalSeconds), strconv.Itoa(t.SessionCount)})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing daily report: %w", err)
	}
	return nil
}

// WriteWeeklyCSV writes the weekly report: one row per day followed by the
// weekly totals.
func WriteWeeklyCSV(w io.Writer, summary *models.WeeklySummary) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"Context Timer - Weekly Report"},
		{fmt.Sprintf("Week: %s - %s", summary.WeekStart.Format(ReportDateLayout), summary.WeekEnd.Format(ReportDateLayout))},
		{},
		{"Date", "Total Time", "Context Switches", "Tasks Worked"},
	}
	for _, d := range summary.Days {
		rows = append(rows, []string{
			d.Date.Format(ReportDateLayout),
			FormatDuration(d.Seconds),
			strconv.Itoa(d.Switches),
			strconv.Itoa(d.TaskCount),
		})
	}
	rows = append(rows,
		[]string{},
		[]string{"Weekly Summary"},
		[]string{"Total Time Worked", FormatDuration(summary.TotalSeconds)},
		[]string{"Total Context Switches", strconv.Itoa(summary.TotalSwitches)},
		[]string{"Average Daily Time", FormatDuration(summary.AverageSeconds)},
	)

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing weekly report: %w", err)
	}
	return nil
}

// ExportFilename returns context-timer-<kind>-<date>-<HHMMSS>.csv.
func ExportFilename(kind, dateStr string, now time.Time) string {
	if dateStr == "" {
		dateStr = now.Format("20060102")
	}
	return fmt.Sprintf("context-timer-%s-%s-%s.csv", kind, dateStr, now.Format("150405"))
}

// WriteExportFile creates dir if needed and writes a CSV produced by write
// into it. It returns the full path written.
func WriteExportFile(dir, filename string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}
