package meetings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

// ErrArchiveUnavailable is returned while the archive circuit is open.
var ErrArchiveUnavailable = errors.New("meetings: archive unavailable")

// BreakerSettings tunes the archive circuit breaker.
type BreakerSettings struct {
	Name             string
	FailureThreshold int
	OpenTimeout      time.Duration
}

// BreakerRepository guards a Repository with a circuit breaker so a failing
// database stops being called until it has had time to recover.
type BreakerRepository struct {
	next    Repository
	breaker *gobreaker.CircuitBreaker[any]
}

func NewBreakerRepository(next Repository, settings BreakerSettings, logger *logging.Logger) *BreakerRepository {
	if next == nil {
		panic("meetings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if settings.Name == "" {
		settings.Name = "meeting-archive"
	}
	threshold := uint32(5)
	if settings.FailureThreshold > 0 {
		threshold = uint32(settings.FailureThreshold)
	}
	timeout := settings.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrMeetingNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("archive circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerRepository{next: next, breaker: cb}
}

func (b *BreakerRepository) Record(ctx context.Context, m *Meeting) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.next.Record(ctx, m)
	})
	return b.translate(err)
}

func (b *BreakerRepository) Get(ctx context.Context, id string) (*Meeting, error) {
	res, err := b.breaker.Execute(func() (any, error) {
		return b.next.Get(ctx, id)
	})
	if err != nil {
		return nil, b.translate(err)
	}
	return res.(*Meeting), nil
}

func (b *BreakerRepository) ListBySession(ctx context.Context, sessionID string) ([]*Meeting, error) {
	res, err := b.breaker.Execute(func() (any, error) {
		return b.next.ListBySession(ctx, sessionID)
	})
	if err != nil {
		return nil, b.translate(err)
	}
	return res.([]*Meeting), nil
}

// State reports the current breaker state name.
func (b *BreakerRepository) State() string {
	return b.breaker.State().String()
}

func (b *BreakerRepository) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrArchiveUnavailable, err)
	}
	return err
}
