package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

// ReportAggregator turns sessions and switches into daily and weekly
// summaries and clears history.
type ReportAggregator interface {
	DailySummary(day time.Time) (*models.DailySummary, error)
	WeeklySummary(week time.Time) (*models.WeeklySummary, error)
	SessionsForRange(start, end time.Time) ([]models.TimerSession, error)
	// ClearRange deletes sessions and switches in [start, end) and returns
	// the number of sessions deleted.
	ClearRange(start, end time.Time) (int, error)
	ClearDay(day time.Time) (int, error)
	ClearAll() (int, error)
	// Elapsed returns ElapsedSeconds for session against the aggregator clock.
	Elapsed(session models.TimerSession) int64
}

// ReportStore is the union of store capabilities the aggregator reads and
// clears.
type ReportStore interface {
	ListSessionsInRange(start, end time.Time) ([]models.TimerSession, error)
	ListSwitchesInRange(start, end time.Time) ([]models.ContextSwitch, error)
	HistoryStore
}

type reportAggregator struct {
	store       ReportStore
	clock       Clock
	loc         *time.Location
	eventLogger EventLogger
}

// NewReportAggregator creates a ReportAggregator. loc defines calendar days;
// nil means time.Local. clock and eventLogger may be nil.
func NewReportAggregator(store ReportStore, clock Clock, loc *time.Location, eventLogger EventLogger) ReportAggregator {
	if loc == nil {
		loc = time.Local
	}
	return &reportAggregator{store: store, clock: clock, loc: loc, eventLogger: eventLogger}
}

func (r *reportAggregator) DailySummary(day time.Time) (*models.DailySummary, error) {
	start, end := DayBounds(day, r.loc)

	sessions, err := r.store.ListSessionsInRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("building daily summary: %w", err)
	}
	switches, err := r.store.ListSwitchesInRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("building daily summary: %w", err)
	}

	now := r.clock.now()
	byTask := make(map[int64]*models.TaskBreakdown)
	summary := &models.DailySummary{
		Date:          start,
		Start:         start,
		End:           end,
		TotalSwitches: len(switches),
	}
	for _, s := range sessions {
		elapsed := ElapsedSeconds(s, now)
		summary.TotalSeconds += elapsed

		b, ok := byTask[s.TaskID]
		if !ok {
			b = &models.TaskBreakdown{TaskID: s.TaskID, Name: s.TaskName}
			byTask[s.TaskID] = b
		}
		b.TotalSeconds += elapsed
		b.SessionCount++
	}

	summary.Tasks = make([]models.TaskBreakdown, 0, len(byTask))
	for _, b := range byTask {
		summary.Tasks = append(summary.Tasks, *b)
	}
	sort.Slice(summary.Tasks, func(i, j int) bool {
		a, b := summary.Tasks[i], summary.Tasks[j]
		if a.TotalSeconds != b.TotalSeconds {
			return a.TotalSeconds > b.TotalSeconds
		}
		return a.Name < b.Name
	})
	return summary, nil
}

func (r *reportAggregator) WeeklySummary(week time.Time) (*models.WeeklySummary, error) {
	monday := WeekStart(week, r.loc)
	summary := &models.WeeklySummary{
		WeekStart: monday,
		WeekEnd:   monday.AddDate(0, 0, 6),
		Days:      make([]models.DaySummary, 0, 7),
	}

	now := r.clock.now()
	for i := 0; i < 7; i++ {
		start := monday.AddDate(0, 0, i)
		end := start.AddDate(0, 0, 1)

		sessions, err := r.store.ListSessionsInRange(start, end)
		if err != nil {
			return nil, fmt.Errorf("building weekly summary: %w", err)
		}
		switches, err := r.store.ListSwitchesInRange(start, end)
		if err != nil {
			return nil, fmt.Errorf("building weekly summary: %w", err)
		}

		day := models.DaySummary{Date: start, Switches: len(switches)}
		tasks := make(map[int64]struct{})
		for _, s := range sessions {
			day.Seconds += ElapsedSeconds(s, now)
			tasks[s.TaskID] = struct{}{}
		}
		day.TaskCount = len(tasks)

		summary.Days = append(summary.Days, day)
		summary.TotalSeconds += day.Seconds
		summary.TotalSwitches += day.Switches
	}

	// Always seven, even when only some days have data.
	summary.AverageSeconds = summary.TotalSeconds / 7
	return summary, nil
}

func (r *reportAggregator) SessionsForRange(start, end time.Time) ([]models.TimerSession, error) {
	sessions, err := r.store.ListSessionsInRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

func (r *reportAggregator) ClearRange(start, end time.Time) (int, error) {
	n, err := r.store.DeleteHistoryInRange(start, end)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	emit(r.eventLogger, EventHistoryCleared, map[string]any{
		"start":            start.UTC().Format(time.RFC3339),
		"end":              end.UTC().Format(time.RFC3339),
		"sessions_deleted": n,
	})
	return n, nil
}

func (r *reportAggregator) ClearDay(day time.Time) (int, error) {
	start, end := DayBounds(day, r.loc)
	return r.ClearRange(start, end)
}

func (r *reportAggregator) ClearAll() (int, error) {
	n, err := r.store.DeleteAllHistory()
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	emit(r.eventLogger, EventHistoryCleared, map[string]any{
		"all":              true,
		"sessions_deleted": n,
	})
	return n, nil
}

func (r *reportAggregator) Elapsed(session models.TimerSession) int64 {
	return ElapsedSeconds(session, r.clock.now())
}

// ElapsedSeconds returns the stored duration of a stopped session, or the
// whole seconds since start for a running one. Never negative.
func ElapsedSeconds(session models.TimerSession, now time.Time) int64 {
	if session.DurationSeconds != nil {
		return *session.DurationSeconds
	}
	secs := int64(now.Sub(session.StartTime) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// FormatDuration renders seconds as zero-padded HH:MM:SS. Hours are not
// wrapped at 24.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// ElapsedDisplay is FormatDuration of ElapsedSeconds.
func ElapsedDisplay(session models.TimerSession, now time.Time) string {
	return FormatDuration(ElapsedSeconds(session, now))
}

// FormatDurationVerbose renders seconds like "2h 15m 30s", omitting zero
// parts except for a lone "0s".
func FormatDurationVerbose(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}
