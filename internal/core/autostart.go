package core

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

// startTimePattern matches a 24-hour "HH:MM" value.
var startTimePattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// AutoStarter starts the Work Day on launch once the configured expected
// start time has passed.
type AutoStarter interface {
	// Check starts the Work Day if due. started reports whether it did.
	Check(now time.Time) (started bool, err error)
	ExpectedStartTime() (string, bool, error)
	SetExpectedStartTime(value string) error
}

type autoStarter struct {
	settings    SettingStore
	tracker     SessionTracker
	loc         *time.Location
	eventLogger EventLogger
}

// NewAutoStarter creates an AutoStarter. The expected start time is compared
// against the wall clock in loc; nil means time.Local.
func NewAutoStarter(settings SettingStore, tracker SessionTracker, loc *time.Location, eventLogger EventLogger) AutoStarter {
	if loc == nil {
		loc = time.Local
	}
	return &autoStarter{settings: settings, tracker: tracker, loc: loc, eventLogger: eventLogger}
}

func (a *autoStarter) Check(now time.Time) (bool, error) {
	value, ok, err := a.settings.GetSetting(models.ExpectedStartTimeKey)
	if err != nil {
		return false, fmt.Errorf("checking auto-start: %w", err)
	}
	if !ok || value == "" {
		return false, nil
	}

	hour, minute, err := ParseStartTime(value)
	if err != nil {
		return false, fmt.Errorf("checking auto-start: %w", err)
	}

	state, err := a.tracker.SpecialState()
	if err != nil {
		return false, fmt.Errorf("checking auto-start: %w", err)
	}
	if state.WorkDay != nil {
		return false, nil
	}

	local := now.In(a.loc)
	expected := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, a.loc)
	if local.Before(expected) {
		return false, nil
	}

	result, err := a.tracker.StartWorkDay()
	if err != nil {
		return false, fmt.Errorf("auto-starting work day: %w", err)
	}

	data := map[string]any{"expected_start_time": value}
	if result.Session != nil {
		data["session_id"] = result.Session.ID
	}
	emit(a.eventLogger, EventWorkDayAutoStarted, data)
	return true, nil
}

func (a *autoStarter) ExpectedStartTime() (string, bool, error) {
	value, ok, err := a.settings.GetSetting(models.ExpectedStartTimeKey)
	if err != nil {
		return "", false, fmt.Errorf("reading expected start time: %w", err)
	}
	return value, ok, nil
}

func (a *autoStarter) SetExpectedStartTime(value string) error {
	hour, minute, err := ParseStartTime(value)
	if err != nil {
		return err
	}
	normalized := fmt.Sprintf("%02d:%02d", hour, minute)
	if err := a.settings.SetSetting(models.ExpectedStartTimeKey, normalized); err != nil {
		return fmt.Errorf("saving expected start time: %w", err)
	}
	return nil
}

// ParseStartTime parses a 24-hour "HH:MM" value.
func ParseStartTime(value string) (hour, minute int, err error) {
	m := startTimePattern.FindStringSubmatch(value)
	if m == nil {
		return 0, 0, fmt.Errorf("expected start time %q must be HH:MM: %w", value, models.ErrInvalidSetting)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}
