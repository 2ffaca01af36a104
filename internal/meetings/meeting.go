// Package meetings holds the scheduled meeting type and the archive of
// confirmed meetings.
package meetings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Display formats used in replies.
const (
	DateLayout = "02-01-2006"
	TimeLayout = "03:04 PM"
	Unknown    = "unknown"
)

// Status tracks where a meeting is in the confirmation flow.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// Minutes is a meeting length that may be unknown.
type Minutes struct {
	value int
	known bool
}

// KnownMinutes wraps a resolved length.
func KnownMinutes(n int) Minutes { return Minutes{value: n, known: true} }

// UnknownMinutes is the length of a meeting whose duration was never stated.
func UnknownMinutes() Minutes { return Minutes{} }

// Get returns the length and whether it is known.
func (m Minutes) Get() (int, bool) { return m.value, m.known }

func (m Minutes) String() string {
	if !m.known {
		return Unknown
	}
	return strconv.Itoa(m.value)
}

// MarshalJSON writes a number, or the string "unknown".
func (m Minutes) MarshalJSON() ([]byte, error) {
	if !m.known {
		return json.Marshal(Unknown)
	}
	return json.Marshal(m.value)
}

func (m *Minutes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Minutes{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != Unknown {
			return fmt.Errorf("meetings: invalid duration %q", s)
		}
		*m = Minutes{}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("meetings: invalid duration: %w", err)
	}
	*m = KnownMinutes(n)
	return nil
}

// Meeting is a proposed or confirmed meeting. End is set exactly when the
// duration is known, and then equals Start plus the duration.
type Meeting struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	Customer    string     `json:"customer"`
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end,omitempty"`
	Duration    Minutes    `json:"duration_minutes"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

var errInvalidMeeting = errors.New("meetings: invalid meeting")

// New builds a pending meeting and derives its end time.
func New(id, sessionID, customer string, start time.Time, duration Minutes, now time.Time) *Meeting {
	m := &Meeting{
		ID:        id,
		SessionID: sessionID,
		Customer:  customer,
		Start:     start,
		Duration:  duration,
		Status:    StatusPending,
		CreatedAt: now,
	}
	if n, ok := duration.Get(); ok {
		end := start.Add(time.Duration(n) * time.Minute)
		m.End = &end
	}
	return m
}

// Validate checks the fields a stored meeting must carry.
func (m *Meeting) Validate() error {
	switch {
	case m == nil:
		return fmt.Errorf("%w: nil", errInvalidMeeting)
	case m.ID == "":
		return fmt.Errorf("%w: id required", errInvalidMeeting)
	case m.Customer == "":
		return fmt.Errorf("%w: customer required", errInvalidMeeting)
	case m.Start.IsZero():
		return fmt.Errorf("%w: start required", errInvalidMeeting)
	}
	n, known := m.Duration.Get()
	if known != (m.End != nil) {
		return fmt.Errorf("%w: end time and duration disagree", errInvalidMeeting)
	}
	if known && !m.End.Equal(m.Start.Add(time.Duration(n)*time.Minute)) {
		return fmt.Errorf("%w: end time does not match duration", errInvalidMeeting)
	}
	return nil
}

// Confirm returns a confirmed copy of m.
func (m *Meeting) Confirm(at time.Time) *Meeting {
	c := m.Clone()
	c.Status = StatusConfirmed
	c.ConfirmedAt = &at
	return c
}

// Clone deep-copies m.
func (m *Meeting) Clone() *Meeting {
	if m == nil {
		return nil
	}
	c := *m
	if m.End != nil {
		end := *m.End
		c.End = &end
	}
	if m.ConfirmedAt != nil {
		at := *m.ConfirmedAt
		c.ConfirmedAt = &at
	}
	return &c
}

// Details is the meeting as shown to callers.
type Details struct {
	ID              string  `json:"id"`
	Customer        string  `json:"customer"`
	Day             string  `json:"day"`
	Date            string  `json:"date"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	DurationMinutes Minutes `json:"duration_minutes"`
}

// Details renders the display fields. Missing end time and duration show as "unknown".
func (m *Meeting) Details() Details {
	d := Details{
		ID:              m.ID,
		Customer:        m.Customer,
		Day:             m.Start.Weekday().String(),
		Date:            m.Start.Format(DateLayout),
		StartTime:       m.Start.Format(TimeLayout),
		EndTime:         Unknown,
		DurationMinutes: m.Duration,
	}
	if m.End != nil {
		d.EndTime = m.End.Format(TimeLayout)
	}
	return d
}

// Prompt is the spoken question asking the user to confirm m.
func (m *Meeting) Prompt() string {
	length := "with no set length"
	if n, ok := m.Duration.Get(); ok {
		length = fmt.Sprintf("for %d minutes", n)
	}
	return fmt.Sprintf("Schedule a meeting with %s on %s, %s at %s %s. Should I confirm?",
		m.Customer,
		m.Start.Weekday(),
		m.Start.Format(DateLayout),
		m.Start.Format(TimeLayout),
		length,
	)
}
