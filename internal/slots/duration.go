package slots

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	digitMinutesRE = regexp.MustCompile(`\b(\d{1,3})\s*(?:minutes|minute|mins|min)\b`)
	digitHoursRE   = regexp.MustCompile(`\b(\d{1,2}(?:\.\d+)?)\s*(?:hours|hour|hrs|hr)\b`)
)

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var unitWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

// ExtractDuration finds a meeting length in minutes in normalized text. An
// hour part and a minute part are added together whether they are written
// as digits or as words.
func ExtractDuration(text string) Result[int] {
	words := Words(text)
	if total := hourDuration(text, words) + minuteDuration(text, words); total > 0 {
		return Found(total)
	}
	return NotFound[int]()
}

func hourDuration(text string, words []string) int {
	if m := digitHoursRE.FindStringSubmatch(text); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		return int(math.Round(h*60)) + halfHour(text)
	}
	if strings.Contains(text, "half an hour") || strings.Contains(text, "half hour") {
		return 30
	}
	for i := 0; i+1 < len(words); i++ {
		if words[i+1] != "hour" && words[i+1] != "hours" {
			continue
		}
		if n, ok := unitWords[words[i]]; ok {
			return n*60 + halfHour(text)
		}
		if words[i] == "an" || words[i] == "a" {
			return 60 + halfHour(text)
		}
	}
	return 0
}

// halfHour reads the "and a half" in "an hour and a half".
func halfHour(text string) int {
	if strings.Contains(text, "and a half") || strings.Contains(text, "and half") {
		return 30
	}
	return 0
}

func minuteDuration(text string, words []string) int {
	if m := digitMinutesRE.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if strings.Contains(text, "minute") {
		if n, ok := wordDuration(words); ok {
			return n
		}
	}
	return 0
}

func wordDuration(words []string) (int, bool) {
	for i, w := range words {
		tens, ok := tensWords[w]
		if !ok {
			continue
		}
		if i+1 < len(words) {
			if units, ok := unitWords[words[i+1]]; ok {
				return tens + units, true
			}
		}
		return tens, true
	}
	for i := 0; i+1 < len(words); i++ {
		units, ok := unitWords[words[i]]
		if ok && strings.HasPrefix(words[i+1], "minute") {
			return units, true
		}
	}
	return 0, false
}
