package slots

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DateResolver resolves an explicit date phrase ("tomorrow", "march 5th")
// relative to ref. Implementations return midnight of the resolved day.
type DateResolver interface {
	ResolveDate(text string, ref time.Time) Result[time.Time]
}

// DateResolverFunc adapts a plain function to DateResolver.
type DateResolverFunc func(text string, ref time.Time) Result[time.Time]

func (f DateResolverFunc) ResolveDate(text string, ref time.Time) Result[time.Time] {
	return f(text, ref)
}

// RelativeDayResolver understands today, tonight, tomorrow and the day after tomorrow.
type RelativeDayResolver struct{}

func (RelativeDayResolver) ResolveDate(text string, ref time.Time) Result[time.Time] {
	day := StartOfDay(ref)
	switch {
	case strings.Contains(text, "day after tomorrow"):
		return Found(day.AddDate(0, 0, 2))
	case ContainsWord(text, "tomorrow"):
		return Found(day.AddDate(0, 0, 1))
	case ContainsAnyWord(text, "today", "tonight"):
		return Found(day)
	}
	return NotFound[time.Time]()
}

// NaturalDateResolver delegates to a general purpose English date parser.
type NaturalDateResolver struct {
	parser *when.Parser
}

// NewNaturalDateResolver builds a resolver with the English and common rule sets.
func NewNaturalDateResolver() *NaturalDateResolver {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &NaturalDateResolver{parser: w}
}

func (r *NaturalDateResolver) ResolveDate(text string, ref time.Time) Result[time.Time] {
	res, err := r.parser.Parse(text, ref)
	if err != nil || res == nil {
		return NotFound[time.Time]()
	}
	today := StartOfDay(ref)
	day := StartOfDay(res.Time.In(ref.Location()))
	// A bare clock time parses to the reference day; that is not a date.
	if day.Equal(today) && !ContainsAnyWord(text, "today", "tonight") {
		return NotFound[time.Time]()
	}
	if day.Before(today) {
		if !namesMonth(text) {
			return NotFound[time.Time]()
		}
		// A month and day already behind us this year means the next one.
		for day.Before(today) {
			day = day.AddDate(1, 0, 0)
		}
	}
	return Found(day)
}

var monthWords = map[string]struct{}{
	"january": {}, "jan": {}, "february": {}, "feb": {}, "march": {}, "mar": {},
	"april": {}, "apr": {}, "may": {}, "june": {}, "jun": {}, "july": {}, "jul": {},
	"august": {}, "aug": {}, "september": {}, "sept": {}, "sep": {},
	"october": {}, "oct": {}, "november": {}, "nov": {}, "december": {}, "dec": {},
}

func namesMonth(text string) bool {
	for _, w := range Words(text) {
		if _, ok := monthWords[w]; ok {
			return true
		}
	}
	return false
}

// ChainResolver tries each resolver in order and returns the first resolved date.
type ChainResolver []DateResolver

func (c ChainResolver) ResolveDate(text string, ref time.Time) Result[time.Time] {
	for _, r := range c {
		if r == nil {
			continue
		}
		if res := r.ResolveDate(text, ref); res.Resolved() {
			return res
		}
	}
	return NotFound[time.Time]()
}

// DefaultDateResolver handles relative day words first, then general phrases.
func DefaultDateResolver() DateResolver {
	return ChainResolver{RelativeDayResolver{}, NewNaturalDateResolver()}
}
