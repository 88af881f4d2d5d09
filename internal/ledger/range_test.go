package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveMonthSnapsToFirstDay(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	rng := Resolve(RangeMonth, now)
	require.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), rng.Start)
	require.Equal(t, now, rng.End)
}

func TestResolveWeekIsRolling(t *testing.T) {
	now := time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC)

	rng := Resolve(RangeWeek, now)
	require.Equal(t, now.AddDate(0, 0, -7), rng.Start)
	require.Equal(t, now, rng.End)
}

func TestResolveQuarterIsTrailingThreeMonths(t *testing.T) {
	// Not a fiscal quarter: January resolves back into the previous year.
	now := time.Date(2024, time.January, 20, 8, 0, 0, 0, time.UTC)

	rng := Resolve(RangeQuarter, now)
	require.Equal(t, time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC), rng.Start)
	require.Equal(t, now, rng.End)
}

func TestResolveYearStartsJanuaryFirst(t *testing.T) {
	now := time.Date(2024, time.August, 9, 23, 45, 0, 0, time.UTC)

	rng := Resolve(RangeYear, now)
	require.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), rng.Start)
	require.Equal(t, now, rng.End)
}

func TestResolvePanicsOnUnknownTag(t *testing.T) {
	require.Panics(t, func() {
		Resolve(RangeTag("fortnight"), time.Now())
	})
}

func TestParseRangeTag(t *testing.T) {
	tag, err := ParseRangeTag("quarter")
	require.NoError(t, err)
	require.Equal(t, RangeQuarter, tag)

	_, err = ParseRangeTag("fortnight")
	require.Error(t, err)
}
