package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed read access to sessions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListMonthly returns every session whose scheduled start falls in the given
// calendar month, with the patient display name resolved.
func (r *Repository) ListMonthly(ctx context.Context, year int, month time.Month) ([]Session, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	query := `
		SELECT s.id, s.scheduled_from, s.scheduled_to, s.status, s.patient_id,
			COALESCE(p.full_name, ''), s.cost, s.summary
		FROM sessions s
		LEFT JOIN patients p ON p.id = s.patient_id
		WHERE s.scheduled_from >= $1 AND s.scheduled_from < $2
		ORDER BY s.scheduled_from`

	rows, err := r.pool.Query(ctx, query, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("schedule: list monthly: %w", err)
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		var (
			s        Session
			from, to pgtype.Timestamptz
			status   string
			cost     pgtype.Numeric
			summary  pgtype.Text
		)
		if err := rows.Scan(&s.ID, &from, &to, &status, &s.PatientID, &s.PatientName, &cost, &summary); err != nil {
			return nil, fmt.Errorf("schedule: scan session: %w", err)
		}
		if from.Valid {
			s.ScheduledFrom = from.Time
		}
		if to.Valid {
			s.ScheduledTo = to.Time
		}
		s.Status = SessionStatus(status)
		s.Cost = numericToFloat64(cost)
		s.Summary = summary.String
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedule: iterate sessions: %w", err)
	}
	return sessions, nil
}

func numericToFloat64(n pgtype.Numeric) float64 {
	if !n.Valid {
		return 0
	}
	f, _ := n.Float64Value()
	return f.Float64
}
