package meetings

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
)

const productID = "-//meeting-assistant//voice scheduler//EN"

// ToICalendar renders m as a single-event calendar. Meetings without a known
// length carry no DTEND.
func ToICalendar(m *Meeting) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, m.ID)
	stamp := m.CreatedAt
	if m.ConfirmedAt != nil {
		stamp = *m.ConfirmedAt
	}
	if stamp.IsZero() {
		stamp = time.Now()
	}
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, m.Start)
	if m.End != nil {
		event.Props.SetDateTime(ical.PropDateTimeEnd, *m.End)
	}
	event.Props.SetText(ical.PropSummary, fmt.Sprintf("Meeting with %s", m.Customer))
	if n, ok := m.Duration.Get(); ok {
		event.Props.SetText(ical.PropDescription, fmt.Sprintf("Duration: %d minutes", n))
	}
	event.Props.SetText(ical.PropStatus, "CONFIRMED")

	cal.Children = append(cal.Children, event.Component)
	return cal
}

// WriteICalendar encodes m as iCalendar text.
func WriteICalendar(w io.Writer, m *Meeting) error {
	if err := ical.NewEncoder(w).Encode(ToICalendar(m)); err != nil {
		return fmt.Errorf("meetings: encode ical: %w", err)
	}
	return nil
}

// EncodeICalendar returns m as iCalendar bytes.
func EncodeICalendar(m *Meeting) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteICalendar(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
