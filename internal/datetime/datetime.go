// Package datetime holds the calendar arithmetic used for statistics and
// daily pomodoro sessions. Every helper works in an explicit location.
package datetime

import (
	"time"
	_ "time/tzdata"
)

// Location resolves an IANA zone name, falling back to UTC when it is unknown.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}

	return loc
}

func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func StartOfToday(now time.Time, loc *time.Location) time.Time {
	return DayStart(now.In(loc))
}

// StartOfWeekAgo is midnight seven calendar days before now.
func StartOfWeekAgo(now time.Time, loc *time.Location) time.Time {
	return DayStart(now.In(loc).AddDate(0, 0, -7))
}

func MonthStart(now time.Time, loc *time.Location) time.Time {
	y, m, _ := now.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}

// DateRange spans from midnight `days` days ago to the last nanosecond of today.
func DateRange(now time.Time, days int, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := DayStart(local.AddDate(0, 0, -days))
	end := DayStart(local).AddDate(0, 0, 1).Add(-time.Nanosecond)

	return start, end
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Date is the calendar day of now in loc, as a UTC midnight suitable for DATE columns.
func Date(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
