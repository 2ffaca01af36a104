package dialogue

import (
	"fmt"

	"github.com/wolfman30/meeting-assistant/internal/meetings"
)

// Status is the outcome of a turn as reported to the caller.
type Status string

const (
	StatusAcknowledged         Status = "acknowledged"
	StatusConfirmationRequired Status = "confirmation_required"
	StatusConfirmed            Status = "confirmed"
	StatusCancelled            Status = "cancelled"
	StatusClarificationNeeded  Status = "clarification_needed"
)

// Reply is the response to one turn.
type Reply struct {
	SessionID string            `json:"session_id"`
	Status    Status            `json:"status"`
	Intent    Intent            `json:"intent"`
	Message   string            `json:"message"`
	Customer  string            `json:"customer,omitempty"`
	Meeting   *meetings.Details `json:"meeting,omitempty"`
	Error     *ReplyError       `json:"error,omitempty"`
	Prompt    string            `json:"prompt"`
}

// ReplyError is the structured form of a clarification.
type ReplyError struct {
	Code  ClarificationKind `json:"code"`
	Field Field             `json:"field"`
}

// NeedsClarification reports whether the turn ended in a question.
func (r *Reply) NeedsClarification() bool {
	return r.Status == StatusClarificationNeeded
}

func clarificationReply(sessionID string, intent Intent, ce *ClarificationError) *Reply {
	return &Reply{
		SessionID: sessionID,
		Status:    StatusClarificationNeeded,
		Intent:    intent,
		Message:   "More information needed",
		Error:     &ReplyError{Code: ce.Kind, Field: ce.Field},
		Prompt:    ce.Prompt(),
	}
}

func customerSetReply(sessionID, customer string) *Reply {
	return &Reply{
		SessionID: sessionID,
		Status:    StatusAcknowledged,
		Intent:    IntentSetCustomer,
		Message:   "Customer set",
		Customer:  customer,
		Prompt:    fmt.Sprintf("Okay, the customer is now %s.", customer),
	}
}

func customerResetReply(sessionID string) *Reply {
	return &Reply{
		SessionID: sessionID,
		Status:    StatusAcknowledged,
		Intent:    IntentResetCustomer,
		Message:   "Customer cleared",
		Prompt:    "Okay, I've cleared the customer.",
	}
}

func pendingReply(sessionID string, m *meetings.Meeting) *Reply {
	d := m.Details()
	return &Reply{
		SessionID: sessionID,
		Status:    StatusConfirmationRequired,
		Intent:    IntentScheduleMeeting,
		Message:   "Confirmation required",
		Customer:  m.Customer,
		Meeting:   &d,
		Prompt:    m.Prompt(),
	}
}

func confirmedReply(sessionID string, m *meetings.Meeting) *Reply {
	d := m.Details()
	return &Reply{
		SessionID: sessionID,
		Status:    StatusConfirmed,
		Intent:    IntentConfirm,
		Message:   "Meeting confirmed",
		Customer:  m.Customer,
		Meeting:   &d,
		Prompt:    fmt.Sprintf("Done. Your meeting with %s on %s at %s is confirmed.", m.Customer, d.Day, d.StartTime),
	}
}

func cancelledReply(sessionID string) *Reply {
	return &Reply{
		SessionID: sessionID,
		Status:    StatusCancelled,
		Intent:    IntentCancel,
		Message:   "Meeting cancelled",
		Prompt:    "Okay, I won't schedule it.",
	}
}
