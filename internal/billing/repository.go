package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListPaymentsRequest narrows the payment listing. From and To are inclusive
// calendar dates (time-of-day is ignored); Page and Limit are optional, zero
// Limit returns the full window.
type ListPaymentsRequest struct {
	From  time.Time
	To    time.Time
	Page  int
	Limit int
}

// Repository provides PostgreSQL backed read access to payments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListWindow returns payments whose payment date falls in the request window,
// newest first, with the patient display name resolved.
func (r *Repository) ListWindow(ctx context.Context, req ListPaymentsRequest) ([]Payment, error) {
	query := `
		SELECT pay.id, pay.session_id, pay.amount, pay.payment_date, pay.status,
			pay.paid_date, pay.description, pay.patient_id, COALESCE(p.full_name, '')
		FROM payments pay
		LEFT JOIN patients p ON p.id = pay.patient_id
		WHERE 1=1`

	args := []any{}
	argNum := 1

	if !req.From.IsZero() {
		query += fmt.Sprintf(" AND pay.payment_date >= $%d", argNum)
		args = append(args, dayStart(req.From))
		argNum++
	}
	if !req.To.IsZero() {
		query += fmt.Sprintf(" AND pay.payment_date < $%d", argNum)
		args = append(args, dayStart(req.To).AddDate(0, 0, 1))
		argNum++
	}

	query += " ORDER BY pay.payment_date DESC"

	if req.Limit > 0 {
		page := req.Page
		if page <= 0 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
		args = append(args, req.Limit, (page-1)*req.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("billing: list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]Payment, 0)
	for rows.Next() {
		var (
			pay         Payment
			amount      pgtype.Numeric
			paymentDate pgtype.Timestamptz
			status      string
			paidDate    pgtype.Timestamptz
			description pgtype.Text
		)
		if err := rows.Scan(&pay.ID, &pay.SessionID, &amount, &paymentDate, &status,
			&paidDate, &description, &pay.PatientID, &pay.PatientName); err != nil {
			return nil, fmt.Errorf("billing: scan payment: %w", err)
		}
		pay.Amount = numericToFloat64(amount)
		if paymentDate.Valid {
			pay.PaymentDate = paymentDate.Time
		}
		pay.Status = PaymentStatus(status)
		if paidDate.Valid {
			pay.PaidDate = paidDate.Time
		}
		pay.Description = description.String
		payments = append(payments, pay)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("billing: iterate payments: %w", err)
	}
	return payments, nil
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func numericToFloat64(n pgtype.Numeric) float64 {
	if !n.Valid {
		return 0
	}
	f, _ := n.Float64Value()
	return f.Float64
}
