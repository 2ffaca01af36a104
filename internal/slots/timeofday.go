package slots

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ClockTime is a wall-clock start time in 24-hour form.
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On places the clock time on the calendar day of date.
func (c ClockTime) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, date.Location())
}

var (
	meridiemTimeRE = regexp.MustCompile(`\b(\d{1,2})(?:[:.](\d{2}))?\s*([ap])\.?\s?m\b\.?`)
	atTimeRE       = regexp.MustCompile(`\b(?:at|around|by)\s+(\d{1,2})(?:[:.](\d{2}))?\b`)
	colonTimeRE    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	durationUnitRE = regexp.MustCompile(`^\s*(?:minutes?|mins?|hours?|hrs?)\b`)
)

type dayPeriod struct {
	keyword string
	hour    int
	pm      bool
}

// dayPeriods map vague times of day to a default start hour and to the
// meridiem they give a bare hour, in match order.
var dayPeriods = []dayPeriod{
	{"morning", 9, false},
	{"afternoon", 15, true},
	{"evening", 19, true},
	{"tonight", 21, true},
	{"night", 21, true},
}

// ExtractTime finds a meeting start time in normalized text.
func ExtractTime(text string) Result[ClockTime] {
	for _, m := range meridiemTimeRE.FindAllStringSubmatch(text, -1) {
		hour, _ := strconv.Atoi(m[1])
		minute := parseMinute(m[2])
		if hour < 1 || hour > 12 || minute < 0 {
			continue
		}
		return Found(ClockTime{Hour: to24Hour(hour, m[3] == "p"), Minute: minute})
	}

	switch {
	case ContainsAnyWord(text, "noon", "midday"):
		return Found(ClockTime{Hour: 12})
	case ContainsWord(text, "midnight"):
		return Found(ClockTime{Hour: 0})
	}

	period, hasPeriod := findDayPeriod(text)
	for _, re := range []*regexp.Regexp{atTimeRE, colonTimeRE} {
		c, ok := bareTime(text, re)
		if !ok {
			continue
		}
		switch {
		case c.Hour == 0 || c.Hour > 12:
			return Found(c)
		case hasPeriod:
			return Found(ClockTime{Hour: to24Hour(c.Hour, period.pm), Minute: c.Minute})
		}
		return NeedsClarification[ClockTime](ReasonMeridiem)
	}

	if hasPeriod {
		return Found(ClockTime{Hour: period.hour})
	}
	return NotFound[ClockTime]()
}

func findDayPeriod(text string) (dayPeriod, bool) {
	for _, p := range dayPeriods {
		if ContainsWord(text, p.keyword) {
			return p, true
		}
	}
	return dayPeriod{}, false
}

// bareTime finds a number without AM/PM. Hours 13-23 and 0 are 24-hour time;
// 1-12 could be either and the caller decides.
func bareTime(text string, re *regexp.Regexp) (ClockTime, bool) {
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if durationUnitRE.MatchString(text[loc[1]:]) {
			continue
		}
		hour, _ := strconv.Atoi(text[loc[2]:loc[3]])
		minute := 0
		if loc[4] >= 0 {
			minute = parseMinute(text[loc[4]:loc[5]])
		}
		if hour > 23 || minute < 0 {
			continue
		}
		return ClockTime{Hour: hour, Minute: minute}, true
	}
	return ClockTime{}, false
}

func parseMinute(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n > 59 {
		return -1
	}
	return n
}

func to24Hour(hour int, pm bool) int {
	switch {
	case pm && hour != 12:
		return hour + 12
	case !pm && hour == 12:
		return 0
	default:
		return hour
	}
}
