package dialogue

import (
	"context"
	"time"

	"github.com/wolfman30/meeting-assistant/internal/meetings"
)

// State is the conversation memory of one session.
type State struct {
	SessionID string            `json:"session_id"`
	Customer  string            `json:"customer,omitempty"`
	Pending   *meetings.Meeting `json:"pending,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func newState(sessionID string) *State {
	return &State{SessionID: sessionID}
}

// Clone deep-copies s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Pending = s.Pending.Clone()
	return &c
}

// Store persists session state. Load returns a fresh state for an unknown
// session. Lock serializes turns of one session; the returned func releases it.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, sessionID string) error
	Lock(ctx context.Context, sessionID string) (func(), error)
}
