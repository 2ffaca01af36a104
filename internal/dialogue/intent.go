// Package dialogue runs the multi-turn scheduling conversation: it classifies
// each utterance, keeps per-session state and builds meetings awaiting
// confirmation.
package dialogue

import (
	"regexp"
	"strings"

	"github.com/wolfman30/meeting-assistant/internal/slots"
)

// Intent is what the user wants done with one utterance.
type Intent string

const (
	IntentConfirm         Intent = "confirm"
	IntentCancel          Intent = "cancel"
	IntentResetCustomer   Intent = "reset_customer"
	IntentSetCustomer     Intent = "set_customer"
	IntentScheduleMeeting Intent = "schedule_meeting"
	IntentNoAction        Intent = "no_action"
)

// turnSignals is what the classifier sees of a turn.
type turnSignals struct {
	text        string
	hasCustomer bool
	hasPending  bool
}

type intentRule struct {
	intent Intent
	match  func(turnSignals) bool
}

var (
	confirmWords = []string{"yes", "yeah", "yep", "confirm", "confirmed", "okay", "ok"}
	cancelWords  = []string{"no", "nope", "cancel", "cancelled", "stop"}
	meetingStems = []string{"meeting", "schedul"}

	resetCustomerRE = regexp.MustCompile(`\b(?:reset|clear|forget|remove)\s+(?:the\s+)?(?:customer|client)\b`)
)

// intentRules are evaluated in order; the first match wins.
var intentRules = []intentRule{
	{IntentConfirm, func(s turnSignals) bool {
		return s.hasPending && slots.ContainsAnyWord(s.text, confirmWords...)
	}},
	{IntentCancel, func(s turnSignals) bool {
		return s.hasPending && slots.ContainsAnyWord(s.text, cancelWords...)
	}},
	{IntentResetCustomer, func(s turnSignals) bool {
		return resetCustomerRE.MatchString(s.text)
	}},
	{IntentSetCustomer, func(s turnSignals) bool {
		return s.hasCustomer && !mentionsMeeting(s.text)
	}},
	{IntentScheduleMeeting, func(s turnSignals) bool {
		return mentionsMeeting(s.text)
	}},
}

// Classify picks the intent of normalized text.
func Classify(text string, hasCustomer, hasPending bool) Intent {
	signals := turnSignals{text: text, hasCustomer: hasCustomer, hasPending: hasPending}
	for _, rule := range intentRules {
		if rule.match(signals) {
			return rule.intent
		}
	}
	return IntentNoAction
}

// mentionsMeeting matches word stems so "meetings" and "scheduled" count.
func mentionsMeeting(text string) bool {
	for _, w := range slots.Words(text) {
		for _, stem := range meetingStems {
			if strings.HasPrefix(w, stem) {
				return true
			}
		}
	}
	return false
}
