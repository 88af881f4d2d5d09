package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MonthlySource fetches all sessions scheduled in one calendar month.
type MonthlySource interface {
	ListMonthly(ctx context.Context, year int, month time.Month) ([]Session, error)
}

// Loader retrieves sessions for arbitrary date windows by fanning out one
// monthly fetch per calendar month touched and merging the batches.
type Loader struct {
	source MonthlySource
	logger *slog.Logger
}

// NewLoader builds a Loader instance.
func NewLoader(source MonthlySource, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, logger: logger}
}

// LoadRange returns the sessions whose scheduled start falls within
// [start, end] inclusive. Monthly batches are fetched concurrently and
// awaited jointly: a single failed month abandons the whole cycle and no
// partial result is returned. Batches may overlap near month boundaries, so
// records are deduplicated by ID before the window filter is applied
// (last fetched copy wins; sessions are immutable snapshots). Records
// missing either schedule timestamp are dropped silently.
func (l *Loader) LoadRange(ctx context.Context, start, end time.Time) ([]Session, error) {
	keys := MonthKeys(start, end)
	if len(keys) == 0 {
		return nil, nil
	}

	batches := make([][]Session, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			sessions, err := l.source.ListMonthly(gctx, key.Year, key.Month)
			if err != nil {
				return fmt.Errorf("schedule: load %d-%02d: %w", key.Year, int(key.Month), err)
			}
			batches[i] = sessions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := dedupeSessions(batches)

	out := make([]Session, 0, len(merged))
	for _, s := range merged {
		if s.ScheduledFrom.IsZero() || s.ScheduledTo.IsZero() {
			continue
		}
		if s.ScheduledFrom.Before(start) || s.ScheduledFrom.After(end) {
			continue
		}
		out = append(out, s)
	}
	l.logger.Debug("sessions loaded",
		slog.Int("months", len(keys)),
		slog.Int("fetched", len(merged)),
		slog.Int("in_window", len(out)),
	)
	return out, nil
}

// dedupeSessions flattens monthly batches into a single slice keyed by
// session ID, preserving first-seen order while keeping the last-seen copy.
func dedupeSessions(batches [][]Session) []Session {
	index := make(map[uuid.UUID]int)
	merged := make([]Session, 0)
	for _, batch := range batches {
		for _, s := range batch {
			if at, ok := index[s.ID]; ok {
				merged[at] = s
				continue
			}
			index[s.ID] = len(merged)
			merged = append(merged, s)
		}
	}
	return merged
}
