package meetings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores confirmed meetings in the confirmed_meetings table.
type PostgresRepository struct {
	pool rowQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("meetings: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithQuerier(q rowQuerier) *PostgresRepository {
	if q == nil {
		panic("meetings: querier required")
	}
	return &PostgresRepository{pool: q}
}

const meetingColumns = `id, session_id, customer, start_at, end_at, duration_minutes, status, created_at, confirmed_at`

// Record inserts a confirmed meeting. A repeated ID is ignored.
func (r *PostgresRepository) Record(ctx context.Context, m *Meeting) error {
	if err := m.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO confirmed_meetings (` + meetingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query,
		m.ID,
		m.SessionID,
		m.Customer,
		m.Start,
		nullableTime(m.End),
		nullableMinutes(m.Duration),
		string(m.Status),
		m.CreatedAt,
		nullableTime(m.ConfirmedAt),
	); err != nil {
		return fmt.Errorf("meetings: insert failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM confirmed_meetings WHERE id = $1`
	m, err := scanMeeting(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("meetings: get failed: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string) ([]*Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM confirmed_meetings WHERE session_id = $1 ORDER BY start_at`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("meetings: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("meetings: scan failed: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("meetings: list failed: %w", err)
	}
	return out, nil
}

func scanMeeting(row pgx.Row) (*Meeting, error) {
	var (
		m        Meeting
		status   string
		duration *int32
	)
	if err := row.Scan(
		&m.ID,
		&m.SessionID,
		&m.Customer,
		&m.Start,
		&m.End,
		&duration,
		&status,
		&m.CreatedAt,
		&m.ConfirmedAt,
	); err != nil {
		return nil, err
	}
	m.Status = Status(status)
	if duration != nil {
		m.Duration = KnownMinutes(int(*duration))
	}
	return &m, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableMinutes(m Minutes) any {
	if n, ok := m.Get(); ok {
		return int32(n)
	}
	return nil
}
