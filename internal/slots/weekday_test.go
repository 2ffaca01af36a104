package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monday is 2026-10-19, a Monday.
var monday = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name          string
		today, target int
		next          bool
		want          int
	}{
		{"tomorrow's weekday", 0, 1, false, 1},
		{"next adds a week", 0, 1, true, 8},
		{"same day rolls a week", 2, 2, false, 7},
		{"same day with next adds one week", 2, 2, true, 7},
		{"wraps around", 4, 1, false, 4},
		{"sunday from saturday", 5, 6, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(tt.today, tt.target, tt.next))
		})
	}
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, WeekdayIndex(time.Monday))
	assert.Equal(t, 6, WeekdayIndex(time.Sunday))
	assert.Equal(t, 3, WeekdayIndex(time.Thursday))
}

func TestResolveWeekday(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"plain tuesday", "meeting tuesday", time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)},
		{"next tuesday", "meeting next tuesday", time.Date(2026, 10, 27, 0, 0, 0, 0, time.UTC)},
		{"same weekday", "meeting monday", time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC)},
		{"earliest wins", "friday or maybe wednesday", time.Date(2026, 10, 23, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, ok := ResolveWeekday(tt.text, monday).Get()
			require.True(t, ok)
			assert.True(t, tt.want.Equal(slot.Date), "got %s", slot.Date)
			assert.Equal(t, tt.want.Weekday().String(), slot.Weekday)
			assert.Equal(t, SourceWeekday, slot.Source)
		})
	}
}

func TestResolveWeekdayStableWithinDay(t *testing.T) {
	early := time.Date(2026, 10, 19, 0, 5, 0, 0, time.UTC)
	late := time.Date(2026, 10, 19, 23, 55, 0, 0, time.UTC)

	a, ok := ResolveWeekday("next tuesday", early).Get()
	require.True(t, ok)
	b, ok := ResolveWeekday("next tuesday", late).Get()
	require.True(t, ok)
	assert.True(t, a.Date.Equal(b.Date))
}

func TestResolveWeekdaySameDayNoModifier(t *testing.T) {
	wednesday := time.Date(2026, 10, 21, 9, 0, 0, 0, time.UTC)
	slot, ok := ResolveWeekday("wednesday works", wednesday).Get()
	require.True(t, ok)
	assert.Equal(t, 7, int(slot.Date.Sub(StartOfDay(wednesday)).Hours()/24))
}

func TestResolveWeekdayMissing(t *testing.T) {
	assert.Equal(t, StatusUnresolved, ResolveWeekday("some day soon", monday).Status)
}
