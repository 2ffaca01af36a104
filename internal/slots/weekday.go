package slots

import (
	"strings"
	"time"
)

// Date sources recorded on a DateSlot.
const (
	SourceWeekday  = "weekday"
	SourceExplicit = "explicit"
)

// DateSlot is a resolved meeting day.
type DateSlot struct {
	Date    time.Time `json:"date"` // midnight in the reference location
	Weekday string    `json:"weekday"`
	Source  string    `json:"source"`
}

// weekdayNames is indexed Monday=0 through Sunday=6.
var weekdayNames = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// WeekdayIndex converts a time.Weekday to a Monday-based index.
func WeekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// DaysUntil counts days from today to the target weekday. A target equal to
// today, or any target with the next modifier, lands a week later.
func DaysUntil(today, target int, next bool) int {
	offset := ((target-today)%7 + 7) % 7
	if offset == 0 || next {
		offset += 7
	}
	return offset
}

// FindWeekday returns the index of the weekday name that occurs earliest in text.
func FindWeekday(text string) (int, bool) {
	best, bestPos := -1, len(text)+1
	for i, name := range weekdayNames {
		if pos := strings.Index(text, name); pos >= 0 && pos < bestPos {
			best, bestPos = i, pos
		}
	}
	return best, best >= 0
}

// ResolveWeekday turns a weekday mention into a calendar date relative to ref.
func ResolveWeekday(text string, ref time.Time) Result[DateSlot] {
	target, ok := FindWeekday(text)
	if !ok {
		return NotFound[DateSlot]()
	}
	offset := DaysUntil(WeekdayIndex(ref.Weekday()), target, ContainsWord(text, "next"))
	date := StartOfDay(ref).AddDate(0, 0, offset)
	return Found(DateSlot{
		Date:    date,
		Weekday: date.Weekday().String(),
		Source:  SourceWeekday,
	})
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
