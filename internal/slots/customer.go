package slots

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CustomerMatch is a customer name found in an utterance. Start and End are
// byte offsets of the name inside the normalized text.
type CustomerMatch struct {
	Name  string `json:"name"`
	Rule  string `json:"rule"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type customerRule struct {
	name    string
	pattern *regexp.Regexp
}

const nameCapture = `([a-z][a-z' -]*)`

// customerRules run in order; the first rule whose capture yields a name wins.
var customerRules = []customerRule{
	{name: "set_customer", pattern: regexp.MustCompile(`\b(?:change|set|update)\s+(?:the\s+)?customer(?:\s+name)?\s+(?:to|is|as)\s+` + nameCapture)},
	{name: "customer_name_is", pattern: regexp.MustCompile(`\bcustomer\s+name\s+is\s+` + nameCapture)},
	{name: "customer_is", pattern: regexp.MustCompile(`\bcustomer\s+is\s+` + nameCapture)},
	{name: "client_is", pattern: regexp.MustCompile(`\bclient\s+is\s+` + nameCapture)},
	{name: "meeting_with", pattern: regexp.MustCompile(`\bmeeting\s+with\s+` + nameCapture)},
}

var nameTokenRE = regexp.MustCompile(`[a-z][a-z'-]*`)

// nameStopWords end a name capture.
var nameStopWords = map[string]struct{}{
	"on": {}, "at": {}, "for": {}, "and": {}, "next": {}, "this": {},
	"today": {}, "tonight": {}, "tomorrow": {}, "in": {}, "from": {}, "please": {},
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

var nameFillers = map[string]struct{}{"to": {}, "is": {}}

// ExtractCustomer finds a customer name in normalized text.
func ExtractCustomer(text string) Result[CustomerMatch] {
	for _, rule := range customerRules {
		loc := rule.pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		capStart, capEnd := loc[2], loc[3]
		if m, ok := trimName(text, capStart, capEnd); ok {
			m.Rule = rule.name
			return Found(m)
		}
	}
	return NotFound[CustomerMatch]()
}

func trimName(text string, capStart, capEnd int) (CustomerMatch, bool) {
	captured := text[capStart:capEnd]
	tokens := nameTokenRE.FindAllStringIndex(captured, -1)

	var kept [][]int
	for _, tok := range tokens {
		word := captured[tok[0]:tok[1]]
		if _, stop := nameStopWords[word]; stop {
			break
		}
		if _, filler := nameFillers[word]; filler && len(kept) == 0 {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		return CustomerMatch{}, false
	}

	start := capStart + kept[0][0]
	end := capStart + kept[len(kept)-1][1]
	words := make([]string, 0, len(kept))
	for _, tok := range kept {
		words = append(words, captured[tok[0]:tok[1]])
	}
	return CustomerMatch{
		Name:  CleanName(strings.Join(words, " ")),
		Start: start,
		End:   end,
	}, true
}

// CleanName trims a name and renders it in title case.
func CleanName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	return cases.Title(language.English).String(name)
}
