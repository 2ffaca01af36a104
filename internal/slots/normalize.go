// Package slots pulls scheduling slots (customer, date, start time, duration)
// out of a single transcribed utterance.
package slots

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// Normalize lowercases and trims text and collapses internal whitespace.
func Normalize(text string) string {
	return whitespaceRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

// Words splits normalized text into word tokens. Digits stay inside tokens,
// punctuation and hyphens separate them.
func Words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// ContainsWord reports whether word appears in text as a whole token.
func ContainsWord(text, word string) bool {
	for _, w := range Words(text) {
		if w == word {
			return true
		}
	}
	return false
}

// ContainsAnyWord reports whether any of words appears in text as a whole token.
func ContainsAnyWord(text string, words ...string) bool {
	tokens := Words(text)
	for _, want := range words {
		for _, w := range tokens {
			if w == want {
				return true
			}
		}
	}
	return false
}

// maskSpan blanks text[start:end] with spaces so later scans skip it while
// byte offsets stay stable.
func maskSpan(text string, start, end int) string {
	if start < 0 || end > len(text) || start >= end {
		return text
	}
	return text[:start] + strings.Repeat(" ", end-start) + text[end:]
}
