package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/praxis-pm/praxis/internal/jobs"
)

const (
	// TaskLedgerIntegrityScan audits stored payments against the sessions they bill.
	TaskLedgerIntegrityScan = "ledger:integrity_scan"
)

// LedgerIntegrityPayload bounds the scan window and the tolerated amount drift.
type LedgerIntegrityPayload struct {
	WindowDays int     `json:"window_days"`
	Tolerance  float64 `json:"tolerance"`
}

// NewLedgerIntegrityTask constructs an Asynq task for the integrity scan.
func NewLedgerIntegrityTask(windowDays int, tolerance float64) (*asynq.Task, error) {
	payload := LedgerIntegrityPayload{WindowDays: windowDays, Tolerance: tolerance}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrityScan, body, asynq.Queue(QueueDefault)), nil
}

// LedgerIntegrityJob cross-checks session-linked payments for broken
// references, duplicate links and amounts drifting from the session cost.
type LedgerIntegrityJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewLedgerIntegrityJob initialises the integrity scan handler.
func NewLedgerIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the integrity scan logic.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("ledger integrity: handler not configured")
	}
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WindowDays <= 0 {
		payload.WindowDays = 90
	}
	if payload.Tolerance <= 0 {
		payload.Tolerance = 0.01
	}

	start := j.now()
	tracker := j.metrics().Track(TaskLedgerIntegrityScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(
		slog.Int("window_days", payload.WindowDays),
		slog.Float64("tolerance", payload.Tolerance),
	)
	logger.Info("starting ledger integrity scan")

	scanned, findings, err := j.scan(ctx, payload, start)
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}

	for _, f := range findings {
		logger.Warn("ledger integrity finding",
			slog.String("kind", f.Kind),
			slog.String("payment_id", f.PaymentID),
			slog.String("session_id", f.SessionID),
			slog.Float64("delta", f.Delta),
		)
		j.metrics().AddIntegrityFindings(f.Kind, 1)
	}

	logger.Info("completed ledger integrity scan",
		slog.Int("payments", scanned),
		slog.Int("findings", len(findings)),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *LedgerIntegrityJob) scan(ctx context.Context, payload LedgerIntegrityPayload, now time.Time) (int, []integrityFinding, error) {
	if j.Pool == nil {
		return 0, nil, errors.New("ledger integrity: pool not configured")
	}
	from := now.AddDate(0, 0, -payload.WindowDays)
	rows, err := j.Pool.Query(ctx, `SELECT pay.id::text, pay.session_id::text, pay.amount::double precision, s.id IS NOT NULL, COALESCE(s.cost, 0)::double precision FROM payments pay LEFT JOIN sessions s ON s.id = pay.session_id WHERE pay.session_id IS NOT NULL AND pay.payment_date >= $1 ORDER BY pay.payment_date`, from)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	scanned := 0
	findings := make([]integrityFinding, 0)
	linked := make(map[string]struct{})
	for rows.Next() {
		var (
			paymentID string
			sessionID string
			amount    float64
			hasRow    bool
			cost      float64
		)
		if err := rows.Scan(&paymentID, &sessionID, &amount, &hasRow, &cost); err != nil {
			return 0, nil, err
		}
		scanned++

		if !hasRow {
			findings = append(findings, integrityFinding{
				Kind:      "orphan_payment",
				PaymentID: paymentID,
				SessionID: sessionID,
			})
			continue
		}
		if _, ok := linked[sessionID]; ok {
			// The reconciler keys payments by session; a second link would
			// double-bill the same appointment.
			findings = append(findings, integrityFinding{
				Kind:      "duplicate_session_link",
				PaymentID: paymentID,
				SessionID: sessionID,
			})
		} else {
			linked[sessionID] = struct{}{}
		}
		if diff := amount - cost; math.Abs(diff) > payload.Tolerance {
			findings = append(findings, integrityFinding{
				Kind:      "amount_drift",
				PaymentID: paymentID,
				SessionID: sessionID,
				Delta:     diff,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}

	return scanned, findings, nil
}

func (j *LedgerIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLedgerIntegrityScan))
	}
	return slog.Default().With(slog.String("job", TaskLedgerIntegrityScan))
}

func (j *LedgerIntegrityJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *LedgerIntegrityJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

type integrityFinding struct {
	Kind      string
	PaymentID string
	SessionID string
	Delta     float64
}
