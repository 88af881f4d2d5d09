package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/praxis-pm/praxis/internal/billing"
	"github.com/praxis-pm/praxis/internal/platform/httpx"
	"github.com/praxis-pm/praxis/internal/schedule"
	"github.com/praxis-pm/praxis/internal/shared"
)

// SessionSource loads the sessions whose scheduled start falls in a window.
type SessionSource interface {
	LoadRange(ctx context.Context, start, end time.Time) ([]schedule.Session, error)
}

// PaymentSource lists payments in a calendar-date window.
type PaymentSource interface {
	ListWindow(ctx context.Context, req billing.ListPaymentsRequest) ([]billing.Payment, error)
}

// Slicing modes for Query.
const (
	ModePage  = "page"
	ModeBatch = "batch"
)

// Query describes one ledger request.
type Query struct {
	Tag     RangeTag
	Filter  FilterState
	Mode    string
	Page    int
	PerPage int
	Visible int
}

// Result carries one slice of the reconciled ledger plus slicing metadata.
// Exactly one of Pagination or Batch is set, matching the query mode.
type Result struct {
	Range      Range
	Items      []Item
	Pagination *shared.Pagination
	Batch      *shared.BatchMeta
}

// Service runs ledger refresh cycles: fetch both sources, reconcile, filter,
// sort, slice. It holds no state between cycles; every call recomputes the
// ledger from scratch.
type Service struct {
	sessions SessionSource
	payments PaymentSource
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(sessions SessionSource, payments PaymentSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		payments: payments,
		logger:   logger,
		now:      time.Now,
	}
}

// WithNow overrides the reference clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Fetch resolves the window, loads both sources, reconciles and returns the
// requested slice.
func (s *Service) Fetch(ctx context.Context, q Query) (*Result, error) {
	items, rng, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	result := &Result{Range: rng}
	if q.Mode == ModeBatch {
		slice, meta := Batch(items, q.Visible)
		result.Items = slice
		result.Batch = &meta
		return result, nil
	}
	slice, meta := Page(items, q.Page, q.PerPage)
	result.Items = slice
	result.Pagination = &meta
	return result, nil
}

// FetchAll returns the filtered, sorted, unsliced item set, for exports.
func (s *Service) FetchAll(ctx context.Context, q Query) ([]Item, Range, error) {
	return s.load(ctx, q)
}

// load performs one refresh cycle. Both sources are fetched concurrently and
// awaited jointly; any failure abandons the cycle with a single coarse
// refresh error and nothing partial is merged.
func (s *Service) load(ctx context.Context, q Query) ([]Item, Range, error) {
	now := s.now()
	rng := Resolve(q.Tag, now)

	// The date narrowing is pushed down to the payment source; ApplyFilters
	// repeats it so virtual items see the same window.
	payFrom, payTo := rng.Start, rng.End
	if !q.Filter.From.IsZero() && q.Filter.From.After(payFrom) {
		payFrom = q.Filter.From
	}
	if !q.Filter.To.IsZero() && q.Filter.To.Before(payTo) {
		payTo = q.Filter.To
	}

	var (
		sessions []schedule.Session
		payments []billing.Payment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.sessions.LoadRange(gctx, rng.Start, rng.End)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.payments.ListWindow(gctx, billing.ListPaymentsRequest{From: payFrom, To: payTo})
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("ledger refresh failed", slog.Any("error", err))
		return nil, Range{}, fmt.Errorf("%w: %v", httpx.ErrUpstream, err)
	}

	items := Reconcile(sessions, payments, now)
	items = ApplyFilters(items, q.Filter)
	SortItems(items, q.Filter.Sort)
	return items, rng, nil
}
