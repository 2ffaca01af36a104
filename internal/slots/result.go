package slots

import (
	"encoding/json"
	"fmt"
)

// Status tags the outcome of one extractor.
type Status int

const (
	StatusUnresolved Status = iota
	StatusResolved
	StatusAmbiguous
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return "unresolved"
	}
}

// MarshalText renders the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ReasonMeridiem marks a clock time that lacks an AM/PM marker.
const ReasonMeridiem = "meridiem"

// Result is the tagged outcome of extracting one slot. Value is meaningful
// only when Status is StatusResolved. Reason says why an ambiguous slot
// needs a follow-up question.
type Result[T any] struct {
	Status Status
	Value  T
	Reason string
}

// Found wraps a resolved value.
func Found[T any](v T) Result[T] {
	return Result[T]{Status: StatusResolved, Value: v}
}

// NotFound reports that the slot was absent from the utterance.
func NotFound[T any]() Result[T] {
	return Result[T]{Status: StatusUnresolved}
}

// NeedsClarification reports a slot that was mentioned but cannot be pinned
// down without asking the user.
func NeedsClarification[T any](reason string) Result[T] {
	return Result[T]{Status: StatusAmbiguous, Reason: reason}
}

func (r Result[T]) Resolved() bool  { return r.Status == StatusResolved }
func (r Result[T]) Ambiguous() bool { return r.Status == StatusAmbiguous }

// Get returns the value and whether it was resolved.
func (r Result[T]) Get() (T, bool) {
	return r.Value, r.Status == StatusResolved
}

func (r Result[T]) String() string {
	switch r.Status {
	case StatusResolved:
		return fmt.Sprintf("resolved(%v)", r.Value)
	case StatusAmbiguous:
		return fmt.Sprintf("ambiguous(%s)", r.Reason)
	default:
		return "unresolved"
	}
}

// MarshalJSON omits the value unless it was resolved.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	out := struct {
		Status Status `json:"status"`
		Value  *T     `json:"value,omitempty"`
		Reason string `json:"reason,omitempty"`
	}{Status: r.Status, Reason: r.Reason}
	if r.Status == StatusResolved {
		v := r.Value
		out.Value = &v
	}
	return json.Marshal(out)
}
