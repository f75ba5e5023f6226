package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Location(""))
	assert.Equal(t, time.UTC, Location("Mars/Olympus_Mons"))
	assert.Equal(t, "Europe/Berlin", Location("Europe/Berlin").String())
}

func TestStartOfTodayAndWeekAgo(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// 22:30 UTC on the 14th is already the 15th at UTC+3.
	now := time.Date(2024, 1, 14, 22, 30, 0, 0, time.UTC)

	today := StartOfToday(now, loc)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, loc), today)

	week := StartOfWeekAgo(now, loc)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, loc), week)
}

func TestMonthStart(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), MonthStart(now, time.UTC))
}

func TestDateRange(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	start, end := DateRange(now, 30, time.UTC)
	assert.Equal(t, time.Date(2023, 12, 16, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 15, 23, 59, 59, 999999999, time.UTC), end)
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	assert.True(t, SameDay(a, time.Date(2024, 1, 15, 15, 45, 0, 0, time.UTC)))
	assert.False(t, SameDay(a, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)))
}

func TestDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2024, 1, 15, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), Date(now, loc))
}
