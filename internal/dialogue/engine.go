package dialogue

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/meeting-assistant/internal/meetings"
	"github.com/wolfman30/meeting-assistant/internal/observability/metrics"
	"github.com/wolfman30/meeting-assistant/internal/slots"
	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

var engineTracer = otel.Tracer("meeting-assistant.internal.dialogue.engine")

// Archive receives meetings once the user confirms them.
type Archive interface {
	Record(ctx context.Context, m *meetings.Meeting) error
}

// Engine coordinates one dialogue turn at a time per session.
type Engine struct {
	store    Store
	dates    slots.DateResolver
	builder  Builder
	archive  Archive
	metrics  *metrics.TurnMetrics
	logger   *logging.Logger
	tracer   trace.Tracer
	now      func() time.Time
	location *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

func WithArchive(a Archive) Option { return func(e *Engine) { e.archive = a } }

func WithMetrics(m *metrics.TurnMetrics) Option { return func(e *Engine) { e.metrics = m } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func WithTracer(t trace.Tracer) Option { return func(e *Engine) { e.tracer = t } }

// WithLocation sets the timezone weekdays and clock times are read in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithDateResolver replaces the explicit-date resolver; nil disables it.
func WithDateResolver(r slots.DateResolver) Option { return func(e *Engine) { e.dates = r } }

// WithDefaultDuration fills in a length when the user gives none.
func WithDefaultDuration(minutes int) Option {
	return func(e *Engine) { e.builder.DefaultMinutes = minutes }
}

// WithIDGenerator sets how meeting IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.builder.NewID = newID }
}

func NewEngine(store Store, logger *logging.Logger, opts ...Option) *Engine {
	if store == nil {
		panic("dialogue: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		store:    store,
		dates:    slots.DefaultDateResolver(),
		logger:   logger,
		tracer:   engineTracer,
		now:      time.Now,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleTurn applies one utterance to the session. Clarifications come back
// as a Reply, not an error; the error is reserved for store failures.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, transcript string) (*Reply, error) {
	ctx, span := e.tracer.Start(ctx, "dialogue.handle_turn", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()
	started := time.Now()

	unlock, err := e.store.Lock(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("dialogue: lock session: %w", err)
	}
	defer unlock()

	state, err := e.store.Load(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := e.now().In(e.location)
	reply, mutated := e.apply(ctx, state, transcript, now)

	if mutated {
		state.UpdatedAt = now
		if err := e.store.Save(ctx, state); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	span.SetAttributes(
		attribute.String("dialogue.intent", string(reply.Intent)),
		attribute.String("dialogue.status", string(reply.Status)),
	)
	e.metrics.ObserveTurn(string(reply.Intent), string(reply.Status), time.Since(started).Seconds())
	if reply.Error != nil {
		e.metrics.ObserveClarification(string(reply.Error.Code), string(reply.Error.Field))
	}
	e.logger.WithSession(sessionID).Info("dialogue turn handled",
		"intent", reply.Intent,
		"status", reply.Status,
		"has_pending", state.Pending != nil,
	)
	return reply, nil
}

// apply runs the state machine on state in place and reports whether it changed.
func (e *Engine) apply(ctx context.Context, state *State, transcript string, now time.Time) (*Reply, bool) {
	extracted := slots.Extract(transcript, now, e.dates)
	name, hasName := extracted.Customer.Get()
	intent := Classify(extracted.Text, hasName, state.Pending != nil)

	switch intent {
	case IntentConfirm:
		confirmed := state.Pending.Confirm(now)
		state.Pending = nil
		e.record(ctx, confirmed)
		return confirmedReply(state.SessionID, confirmed), true

	case IntentCancel:
		state.Pending = nil
		return cancelledReply(state.SessionID), true

	case IntentResetCustomer:
		state.Customer = ""
		return customerResetReply(state.SessionID), true

	case IntentSetCustomer:
		state.Customer = name.Name
		return customerSetReply(state.SessionID, name.Name), true

	case IntentScheduleMeeting:
		m, err := e.builder.Build(state.SessionID, extracted, state.Customer, now)
		if err != nil {
			ce, _ := AsClarification(err)
			return clarificationReply(state.SessionID, intent, ce), false
		}
		state.Pending = m
		return pendingReply(state.SessionID, m), true
	}

	return clarificationReply(state.SessionID, IntentNoAction, errNoIntent), false
}

// record archives a confirmed meeting. Failures are logged and counted; the
// user's confirmation still stands.
func (e *Engine) record(ctx context.Context, m *meetings.Meeting) {
	if e.archive == nil {
		return
	}
	if err := e.archive.Record(ctx, m); err != nil {
		e.metrics.ObserveArchiveFailure()
		e.logger.WithSession(m.SessionID).Error("failed to archive confirmed meeting",
			"meeting_id", m.ID,
			"error", err,
		)
	}
}

// SessionView is a read-only snapshot of a session.
type SessionView struct {
	SessionID string            `json:"session_id"`
	Customer  string            `json:"customer,omitempty"`
	Pending   *meetings.Details `json:"pending,omitempty"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

// Snapshot returns the session's current customer and pending meeting.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) (*SessionView, error) {
	unlock, err := e.store.Lock(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("dialogue: lock session: %w", err)
	}
	defer unlock()

	state, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	view := &SessionView{SessionID: sessionID, Customer: state.Customer}
	if state.Pending != nil {
		d := state.Pending.Details()
		view.Pending = &d
	}
	if !state.UpdatedAt.IsZero() {
		at := state.UpdatedAt
		view.UpdatedAt = &at
	}
	return view, nil
}

// Reset forgets everything about the session.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	unlock, err := e.store.Lock(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("dialogue: lock session: %w", err)
	}
	defer unlock()
	return e.store.Delete(ctx, sessionID)
}
