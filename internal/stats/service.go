package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/praxis-pm/praxis/internal/billing"
	"github.com/praxis-pm/praxis/internal/ledger"
	"github.com/praxis-pm/praxis/internal/patient"
	"github.com/praxis-pm/praxis/internal/platform/httpx"
	"github.com/praxis-pm/praxis/internal/schedule"
)

// SessionSource loads the sessions whose scheduled start falls in a window.
type SessionSource interface {
	LoadRange(ctx context.Context, start, end time.Time) ([]schedule.Session, error)
}

// PaymentSource lists payments in a calendar-date window.
type PaymentSource interface {
	ListWindow(ctx context.Context, req billing.ListPaymentsRequest) ([]billing.Payment, error)
}

// PatientSource lists patient metadata, creation timestamps included.
type PatientSource interface {
	List(ctx context.Context) ([]patient.Patient, error)
}

// Filter describes one dashboard request. Refresh bypasses the cached copy
// and recomputes from the stores.
type Filter struct {
	Tag     ledger.RangeTag
	Refresh bool
}

// Service computes dashboards over the resolved window, caching the result
// per tag and window day under the current cache version.
type Service struct {
	sessions SessionSource
	payments PaymentSource
	patients PatientSource
	cache    *Cache
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(sessions SessionSource, payments PaymentSource, patients PatientSource, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		payments: payments,
		patients: patients,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// WithNow overrides the reference clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Dashboard resolves the window for the tag and returns the aggregated
// dashboard, served from cache when a fresh copy exists.
func (s *Service) Dashboard(ctx context.Context, f Filter) (Dashboard, ledger.Range, error) {
	now := s.now()
	rng := ledger.Resolve(f.Tag, now)

	key, err := s.cache.BuildKey(ctx, "stats", "dashboard", string(f.Tag),
		rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"))
	if err != nil {
		s.logger.Warn("stats cache key", slog.Any("error", err))
		dash, err := s.compute(ctx, f.Tag, rng, now)
		return dash, rng, err
	}
	if f.Refresh {
		if err := s.cache.Forget(ctx, key); err != nil {
			s.logger.Warn("stats cache forget", slog.Any("error", err))
		}
	}

	var dash Dashboard
	loader := func(ctx context.Context) (interface{}, error) {
		return s.compute(ctx, f.Tag, rng, now)
	}
	if err := s.cache.FetchJSON(ctx, key, &dash, loader); err != nil {
		return Dashboard{}, rng, err
	}
	return dash, rng, nil
}

// Warm recomputes and stores the dashboard for one tag, replacing whatever
// the cache holds for the current window.
func (s *Service) Warm(ctx context.Context, tag ledger.RangeTag) error {
	_, _, err := s.Dashboard(ctx, Filter{Tag: tag, Refresh: true})
	return err
}

// compute performs one full refresh cycle: all three stores are fetched
// concurrently and awaited jointly; any failure abandons the cycle.
func (s *Service) compute(ctx context.Context, tag ledger.RangeTag, rng ledger.Range, now time.Time) (Dashboard, error) {
	var (
		sessions []schedule.Session
		payments []billing.Payment
		patients []patient.Patient
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.sessions.LoadRange(gctx, rng.Start, rng.End)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.payments.ListWindow(gctx, billing.ListPaymentsRequest{From: rng.Start, To: rng.End})
		return err
	})
	g.Go(func() error {
		var err error
		patients, err = s.patients.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("stats refresh failed", slog.Any("error", err))
		return Dashboard{}, fmt.Errorf("%w: %v", httpx.ErrUpstream, err)
	}

	items := ledger.Reconcile(sessions, payments, now)
	return Aggregate(Input{
		Tag:      tag,
		Range:    rng,
		Items:    items,
		Sessions: sessions,
		Patients: patients,
	}), nil
}
