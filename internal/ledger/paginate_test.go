package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/praxis-pm/praxis/internal/billing"
)

func manyItems(n int) []Item {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, namedItem(fmt.Sprintf("item-%02d", i), billing.StatusPaid, float64(i), base.Add(time.Duration(i)*time.Hour)))
	}
	return items
}

func TestPageComputesCeilTotalPages(t *testing.T) {
	items := manyItems(45)

	slice, meta := Page(items, 1, 20)
	require.Len(t, slice, 20)
	require.Equal(t, 3, meta.TotalPages)
	require.Equal(t, 45, meta.Total)

	slice, _ = Page(items, 3, 20)
	require.Len(t, slice, 5)
}

func TestPageConcatenationReproducesWholeSet(t *testing.T) {
	items := manyItems(45)

	_, meta := Page(items, 1, 20)
	seen := make([]string, 0, len(items))
	for page := 1; page <= meta.TotalPages; page++ {
		slice, _ := Page(items, page, 20)
		seen = append(seen, itemIDs(slice)...)
	}
	require.Equal(t, itemIDs(items), seen)
}

func TestPageZeroItemsYieldsZeroPages(t *testing.T) {
	slice, meta := Page(nil, 1, 20)
	require.Empty(t, slice)
	require.Equal(t, 0, meta.TotalPages)
	require.Equal(t, 0, meta.Total)
}

func TestPageBeyondRangeIsEmpty(t *testing.T) {
	items := manyItems(10)

	slice, meta := Page(items, 4, 20)
	require.Empty(t, slice)
	require.Equal(t, 1, meta.TotalPages)
}

func TestBatchExposesHasMore(t *testing.T) {
	items := manyItems(45)

	slice, meta := Batch(items, 20)
	require.Len(t, slice, 20)
	require.True(t, meta.HasMore)
	require.Equal(t, 40, meta.NextVisible)

	slice, meta = Batch(items, 40)
	require.Len(t, slice, 40)
	require.True(t, meta.HasMore)
	require.Equal(t, 45, meta.Total)

	slice, meta = Batch(items, 60)
	require.Len(t, slice, 45)
	require.False(t, meta.HasMore)
	require.Equal(t, 45, meta.NextVisible)
}

func TestBatchDefaultsToInitialWindow(t *testing.T) {
	items := manyItems(45)

	slice, meta := Batch(items, 0)
	require.Len(t, slice, DefaultBatchSize)
	require.Equal(t, DefaultBatchSize, meta.VisibleCount)
}
