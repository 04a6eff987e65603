package observability

import (
	"fmt"
	"sort"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id" yaml:"id"`
	Condition   string        `json:"condition" yaml:"condition"`
	Severity    AlertSeverity `json:"severity" yaml:"severity"`
	Message     string        `json:"message" yaml:"message"`
	TriggeredAt time.Time     `json:"triggered_at" yaml:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	LongSessionHours  int `yaml:"long_session_hours" json:"long_session_hours"`
	MaxSwitchesPerDay int `yaml:"max_switches_per_day" json:"max_switches_per_day"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		LongSessionHours:  10,
		MaxSwitchesPerDay: 30,
	}
}

// switchWindowDays bounds how far back the switch count check looks.
const switchWindowDays = 7

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine by reading events and checking thresholds.
type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
	loc        *time.Location
	now        func() time.Time
}

// NewAlertEngine creates a new AlertEngine with the given EventLog and
// thresholds. loc decides which calendar day a switch belongs to; nil means
// time.Local.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds, loc *time.Location) AlertEngine {
	if loc == nil {
		loc = time.Local
	}
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
		loc:        loc,
		now:        time.Now,
	}
}

// Evaluate reads events and checks all alert conditions, returning any triggered alerts.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := ae.now().UTC()
	var alerts []Alert

	sessionAlerts, err := ae.checkLongSessions(now)
	if err != nil {
		return nil, fmt.Errorf("checking long sessions: %w", err)
	}
	alerts = append(alerts, sessionAlerts...)

	switchAlerts, err := ae.checkSwitchesPerDay(now)
	if err != nil {
		return nil, fmt.Errorf("checking context switches: %w", err)
	}
	alerts = append(alerts, switchAlerts...)

	return alerts, nil
}

// checkLongSessions replays session events to find sessions that are still
// running and started longer ago than the threshold.
func (ae *alertEngine) checkLongSessions(now time.Time) ([]Alert, error) {
	events, err := ae.eventLog.Read(EventFilter{Types: []string{
		TypeSessionStarted, TypeSessionReopened, TypeSessionStopped, TypeHistoryCleared,
	}})
	if err != nil {
		return nil, err
	}

	type openSession struct {
		taskName  string
		startedAt time.Time
	}
	open := make(map[int64]openSession)
	// A reopened session keeps running from its original start.
	starts := make(map[int64]time.Time)

	for _, event := range events {
		switch event.Type {
		case TypeSessionStarted, TypeSessionReopened:
			id, ok := event.SessionID()
			if !ok {
				continue
			}
			startedAt, seen := starts[id]
			if !seen {
				startedAt = event.Time
				starts[id] = startedAt
			}
			open[id] = openSession{taskName: event.TaskName(), startedAt: startedAt}
		case TypeSessionStopped:
			if id, ok := event.SessionID(); ok {
				delete(open, id)
			}
		case TypeHistoryCleared:
			if all, _ := event.Data["all"].(bool); all {
				open = make(map[int64]openSession)
				starts = make(map[int64]time.Time)
				continue
			}
			from, to, ok := clearedRange(event.Data)
			if !ok {
				continue
			}
			for id, startedAt := range starts {
				if !startedAt.Before(from) && startedAt.Before(to) {
					delete(open, id)
					delete(starts, id)
				}
			}
		}
	}

	ids := make([]int64, 0, len(open))
	for id := range open {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	threshold := time.Duration(ae.thresholds.LongSessionHours) * time.Hour
	var alerts []Alert
	for _, id := range ids {
		s := open[id]
		if now.Sub(s.startedAt) <= threshold {
			continue
		}
		name := s.taskName
		if name == "" {
			name = fmt.Sprintf("session %d", id)
		}
		alerts = append(alerts, Alert{
			ID:          fmt.Sprintf("long-session-%d", id),
			Condition:   "session_running_too_long",
			Severity:    SeverityHigh,
			Message:     fmt.Sprintf("%s has been running for more than %d hours", name, ae.thresholds.LongSessionHours),
			TriggeredAt: now,
		})
	}

	return alerts, nil
}

// clearedRange reads the [start, end) window of a history.cleared event.
func clearedRange(data map[string]any) (time.Time, time.Time, bool) {
	startStr, _ := data["start"].(string)
	endStr, _ := data["end"].(string)
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// checkSwitchesPerDay counts switch.logged events per calendar day over the
// recent window and alerts for each day above the threshold.
func (ae *alertEngine) checkSwitchesPerDay(now time.Time) ([]Alert, error) {
	since := now.AddDate(0, 0, -switchWindowDays)
	events, err := ae.eventLog.Read(EventFilter{Type: TypeSwitchLogged, Since: &since})
	if err != nil {
		return nil, err
	}

	perDay := make(map[string]int)
	for _, event := range events {
		perDay[event.Time.In(ae.loc).Format("2006-01-02")]++
	}

	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Strings(days)

	var alerts []Alert
	for _, day := range days {
		count := perDay[day]
		if count <= ae.thresholds.MaxSwitchesPerDay {
			continue
		}
		alerts = append(alerts, Alert{
			ID:          fmt.Sprintf("switches-%s", day),
			Condition:   "too_many_switches",
			Severity:    SeverityMedium,
			Message:     fmt.Sprintf("%d context switches on %s, exceeding the maximum of %d", count, day, ae.thresholds.MaxSwitchesPerDay),
			TriggeredAt: now,
		})
	}

	return alerts, nil
}
