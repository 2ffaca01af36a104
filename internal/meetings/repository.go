package meetings

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrMeetingNotFound is returned when no archived meeting has the ID.
var ErrMeetingNotFound = errors.New("meetings: meeting not found")

// Repository archives confirmed meetings.
type Repository interface {
	Record(ctx context.Context, m *Meeting) error
	Get(ctx context.Context, id string) (*Meeting, error)
	ListBySession(ctx context.Context, sessionID string) ([]*Meeting, error)
}

// InMemoryRepository keeps confirmed meetings in process memory.
type InMemoryRepository struct {
	mu       sync.RWMutex
	meetings map[string]*Meeting
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		meetings: make(map[string]*Meeting),
	}
}

// Record stores a copy of m. Recording the same ID twice keeps the first copy.
func (r *InMemoryRepository) Record(ctx context.Context, m *Meeting) error {
	if err := m.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.meetings[m.ID]; !exists {
		r.meetings[m.ID] = m.Clone()
	}
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meetings[id]
	if !ok {
		return nil, ErrMeetingNotFound
	}
	return m.Clone(), nil
}

// ListBySession returns the session's meetings ordered by start time.
func (r *InMemoryRepository) ListBySession(ctx context.Context, sessionID string) ([]*Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Meeting
	for _, m := range r.meetings {
		if m.SessionID == sessionID {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}
