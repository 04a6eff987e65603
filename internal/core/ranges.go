package core

import (
	"fmt"
	"strings"
	"time"
)

// allTimeStart is the lower bound used for "all time" queries.
var allTimeStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Period names accepted by PeriodRange.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

// DayBounds returns [local midnight, next local midnight) for the calendar
// day of t in loc. Adding a calendar day keeps DST days correct.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// WeekStart returns local midnight of the Monday on or before t.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	start, _ := DayBounds(t, loc)
	// time.Weekday has Sunday=0; shift so Monday=0.
	offset := (int(start.Weekday()) + 6) % 7
	return start.AddDate(0, 0, -offset)
}

// TodayRange returns the bounds of the day containing now.
func TodayRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	return DayBounds(now, loc)
}

// WeekRange returns Monday 00:00 through the following Monday 00:00.
func WeekRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	start := WeekStart(now, loc)
	return start, start.AddDate(0, 0, 7)
}

// MonthRange returns the first of the month through the first of the next.
func MonthRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// AllTimeRange covers every session recorded up to now.
func AllTimeRange(now time.Time) (time.Time, time.Time) {
	return allTimeStart, now
}

// PeriodRange resolves a period name to its bounds and the suffix used in
// export file names.
func PeriodRange(period string, now time.Time, loc *time.Location) (start, end time.Time, suffix string, err error) {
	if loc == nil {
		loc = time.Local
	}
	switch strings.ToLower(period) {
	case PeriodToday, "":
		start, end = TodayRange(now, loc)
		return start, end, now.In(loc).Format("20060102"), nil
	case PeriodWeek:
		start, end = WeekRange(now, loc)
		return start, end, start.Format("20060102") + "-week", nil
	case PeriodMonth:
		start, end = MonthRange(now, loc)
		return start, end, now.In(loc).Format("200601"), nil
	case PeriodAll:
		start, end = AllTimeRange(now)
		return start, end, "all-time", nil
	}
	return time.Time{}, time.Time{}, "", fmt.Errorf("unknown period %q: must be one of today, week, month, all", period)
}
