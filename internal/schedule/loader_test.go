package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubMonthlySource struct {
	mu      sync.Mutex
	batches map[MonthKey][]Session
	failOn  *MonthKey
	calls   []MonthKey
}

func (s *stubMonthlySource) ListMonthly(ctx context.Context, year int, month time.Month) ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := MonthKey{Year: year, Month: month}
	s.calls = append(s.calls, key)
	if s.failOn != nil && *s.failOn == key {
		return nil, errors.New("boom")
	}
	return s.batches[key], nil
}

func (s *stubMonthlySource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func sessionAt(id uuid.UUID, from time.Time, summary string) Session {
	return Session{
		ID:            id,
		ScheduledFrom: from,
		ScheduledTo:   from.Add(time.Hour),
		Status:        StatusConfirmed,
		PatientID:     uuid.New(),
		PatientName:   "Ana Lopez",
		Cost:          5000,
		Summary:       summary,
	}
}

func TestLoadRangeFansOutAllMonths(t *testing.T) {
	source := &stubMonthlySource{batches: map[MonthKey][]Session{}}
	loader := NewLoader(source, nil)

	start := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	_, err := loader.LoadRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Equal(t, 3, source.callCount())
}

func TestLoadRangeDeduplicatesOverlappingBatches(t *testing.T) {
	dupID := uuid.New()
	feb := MonthKey{Year: 2024, Month: time.February}
	mar := MonthKey{Year: 2024, Month: time.March}
	boundary := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	source := &stubMonthlySource{batches: map[MonthKey][]Session{
		feb: {sessionAt(dupID, boundary, "first copy")},
		mar: {sessionAt(dupID, boundary, "second copy")},
	}}
	loader := NewLoader(source, nil)

	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	sessions, err := loader.LoadRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, dupID, sessions[0].ID)
	require.Equal(t, "second copy", sessions[0].Summary)
}

func TestLoadRangeKeepsOnlyWindowedStarts(t *testing.T) {
	mar := MonthKey{Year: 2024, Month: time.March}
	start := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)

	inside := sessionAt(uuid.New(), start.AddDate(0, 0, 3), "inside")
	onStart := sessionAt(uuid.New(), start, "on start boundary")
	onEnd := sessionAt(uuid.New(), end, "on end boundary")
	before := sessionAt(uuid.New(), start.AddDate(0, 0, -2), "before window")
	after := sessionAt(uuid.New(), end.AddDate(0, 0, 2), "after window")

	source := &stubMonthlySource{batches: map[MonthKey][]Session{
		mar: {inside, onStart, onEnd, before, after},
	}}
	loader := NewLoader(source, nil)

	sessions, err := loader.LoadRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	for _, s := range sessions {
		require.NotEqual(t, "before window", s.Summary)
		require.NotEqual(t, "after window", s.Summary)
	}
}

func TestLoadRangeSkipsIncompleteRecords(t *testing.T) {
	mar := MonthKey{Year: 2024, Month: time.March}
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	complete := sessionAt(uuid.New(), start.AddDate(0, 0, 5), "complete")
	noEnd := sessionAt(uuid.New(), start.AddDate(0, 0, 6), "no end")
	noEnd.ScheduledTo = time.Time{}
	noStart := sessionAt(uuid.New(), start.AddDate(0, 0, 7), "no start")
	noStart.ScheduledFrom = time.Time{}

	source := &stubMonthlySource{batches: map[MonthKey][]Session{
		mar: {complete, noEnd, noStart},
	}}
	loader := NewLoader(source, nil)

	sessions, err := loader.LoadRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "complete", sessions[0].Summary)
}

func TestLoadRangeAbandonsCycleOnFailedMonth(t *testing.T) {
	feb := MonthKey{Year: 2024, Month: time.February}
	mar := MonthKey{Year: 2024, Month: time.March}
	source := &stubMonthlySource{
		batches: map[MonthKey][]Session{
			feb: {sessionAt(uuid.New(), time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), "ok")},
		},
		failOn: &mar,
	}
	loader := NewLoader(source, nil)

	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	sessions, err := loader.LoadRange(context.Background(), start, end)
	require.Error(t, err)
	require.Nil(t, sessions)
}
