package dialogue

import (
	"errors"
	"fmt"
)

// ClarificationKind says why a turn needs a follow-up question.
type ClarificationKind string

const (
	KindMissingSlot   ClarificationKind = "missing_slot"
	KindAmbiguousSlot ClarificationKind = "ambiguous_slot"
	KindNoIntent      ClarificationKind = "no_intent"
)

// Field names the slot a clarification is about.
type Field string

const (
	FieldDay      Field = "day"
	FieldTime     Field = "time"
	FieldMeridiem Field = "meridiem"
	FieldIntent   Field = "intent"
)

var prompts = map[Field]string{
	FieldDay:      "Which day should I schedule the meeting for?",
	FieldTime:     "What time should the meeting start?",
	FieldMeridiem: "Did you mean AM or PM?",
	FieldIntent:   "Sorry, I didn't catch that. You can set a customer or schedule a meeting.",
}

// ClarificationError is a recoverable outcome: the user is asked a question
// and the session state is left as it was.
type ClarificationError struct {
	Kind  ClarificationKind
	Field Field
}

func (e *ClarificationError) Error() string {
	return fmt.Sprintf("dialogue: %s: %s", e.Kind, e.Field)
}

// Prompt is the question spoken back to the user.
func (e *ClarificationError) Prompt() string {
	return prompts[e.Field]
}

func missingSlot(f Field) *ClarificationError {
	return &ClarificationError{Kind: KindMissingSlot, Field: f}
}

func ambiguousSlot(f Field) *ClarificationError {
	return &ClarificationError{Kind: KindAmbiguousSlot, Field: f}
}

var errNoIntent = &ClarificationError{Kind: KindNoIntent, Field: FieldIntent}

// IsClarification reports whether err asks the user for more detail.
func IsClarification(err error) bool {
	var ce *ClarificationError
	return errors.As(err, &ce)
}

// AsClarification unwraps a ClarificationError from err.
func AsClarification(err error) (*ClarificationError, bool) {
	var ce *ClarificationError
	ok := errors.As(err, &ce)
	return ce, ok
}
