package patient

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed read access to patient metadata.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all patients with their creation timestamps.
func (r *Repository) List(ctx context.Context) ([]Patient, error) {
	query := `
		SELECT id, COALESCE(full_name, ''), created_at
		FROM patients
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("patient: list: %w", err)
	}
	defer rows.Close()

	patients := make([]Patient, 0)
	for rows.Next() {
		var (
			p         Patient
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&p.ID, &p.FullName, &createdAt); err != nil {
			return nil, fmt.Errorf("patient: scan: %w", err)
		}
		if createdAt.Valid {
			p.CreatedAt = createdAt.Time
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patient: iterate: %w", err)
	}
	return patients, nil
}
