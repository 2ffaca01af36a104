package dialogue

import (
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/meeting-assistant/internal/meetings"
	"github.com/wolfman30/meeting-assistant/internal/slots"
)

// UnknownCustomer names meetings booked before any customer was given.
const UnknownCustomer = "Unknown"

// Builder turns extracted slots into a pending meeting.
type Builder struct {
	// DefaultMinutes, when positive, stands in for an unstated duration.
	DefaultMinutes int
	NewID          func() string
}

// Build requires a day and an unambiguous start time. customer is the
// session's current customer and is used only when the utterance names none.
func (b Builder) Build(sessionID string, extracted slots.ExtractedSlots, customer string, now time.Time) (*meetings.Meeting, error) {
	day, ok := extracted.Date.Get()
	if !ok {
		return nil, missingSlot(FieldDay)
	}

	var start slots.ClockTime
	switch extracted.Time.Status {
	case slots.StatusResolved:
		start = extracted.Time.Value
	case slots.StatusAmbiguous:
		return nil, ambiguousSlot(FieldMeridiem)
	default:
		return nil, missingSlot(FieldTime)
	}

	name := customer
	if m, ok := extracted.Customer.Get(); ok {
		name = m.Name
	}
	if name == "" {
		name = UnknownCustomer
	}

	duration := meetings.UnknownMinutes()
	if n, ok := extracted.Duration.Get(); ok {
		duration = meetings.KnownMinutes(n)
	} else if b.DefaultMinutes > 0 {
		duration = meetings.KnownMinutes(b.DefaultMinutes)
	}

	newID := b.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return meetings.New(newID(), sessionID, name, start.On(day.Date), duration, now), nil
}
