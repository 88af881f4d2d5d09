package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/praxis-pm/praxis/internal/billing"
)

func namedItem(name string, status billing.PaymentStatus, amount float64, date time.Time) Item {
	return Item{
		ID:          name,
		Status:      status,
		Amount:      amount,
		Date:        date,
		PatientName: name,
	}
}

func TestApplyFiltersSearchMatchesPatientNameOnly(t *testing.T) {
	date := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	items := []Item{
		namedItem("Juan Perez", billing.StatusPaid, 100, date),
		namedItem("Maria Garcia", billing.StatusPaid, 100, date),
	}
	// Description mentioning Juan must not match.
	items[1].Description = "referred by Juan"

	got := ApplyFilters(items, FilterState{Search: "Juan"})
	require.Len(t, got, 1)
	require.Equal(t, "Juan Perez", got[0].PatientName)
}

func TestApplyFiltersSearchIsCaseAndAccentInsensitive(t *testing.T) {
	date := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	items := []Item{
		namedItem("Raúl Pérez", billing.StatusPaid, 100, date),
		namedItem("Maria Garcia", billing.StatusPaid, 100, date),
	}

	got := ApplyFilters(items, FilterState{Search: "raul perez"})
	require.Len(t, got, 1)
	require.Equal(t, "Raúl Pérez", got[0].PatientName)

	got = ApplyFilters(items, FilterState{Search: "GARCÍA"})
	require.Len(t, got, 1)
	require.Equal(t, "Maria Garcia", got[0].PatientName)
}

func TestApplyFiltersStatusAppliesToVirtualItems(t *testing.T) {
	date := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	virtual := namedItem("Juan Perez", billing.StatusPending, 6000, date)
	virtual.IsVirtual = true
	real := namedItem("Maria Garcia", billing.StatusPaid, 7500, date)

	got := ApplyFilters([]Item{virtual, real}, FilterState{Status: string(billing.StatusPending)})
	require.Len(t, got, 1)
	require.True(t, got[0].IsVirtual)

	got = ApplyFilters([]Item{virtual, real}, FilterState{Status: StatusAll})
	require.Len(t, got, 2)
}

func TestApplyFiltersDateWindowAppliesToVirtualItems(t *testing.T) {
	from := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)

	inside := namedItem("in window", billing.StatusPending, 100, from.AddDate(0, 0, 3))
	inside.IsVirtual = true
	early := namedItem("too early", billing.StatusPending, 100, from.AddDate(0, 0, -1))
	early.IsVirtual = true
	late := namedItem("too late", billing.StatusPending, 100, to.AddDate(0, 0, 1))
	late.IsVirtual = true

	got := ApplyFilters([]Item{inside, early, late}, FilterState{From: from, To: to})
	require.Len(t, got, 1)
	require.Equal(t, "in window", got[0].PatientName)
}

func TestSortItemsByDateAndPrice(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		namedItem("a", billing.StatusPaid, 50, base.AddDate(0, 0, 1)),
		namedItem("b", billing.StatusPaid, 200, base.AddDate(0, 0, 3)),
		namedItem("c", billing.StatusPaid, 0, base.AddDate(0, 0, 2)),
	}

	SortItems(items, SortDateDesc)
	require.Equal(t, []string{"b", "c", "a"}, itemIDs(items))

	SortItems(items, SortDateAsc)
	require.Equal(t, []string{"a", "c", "b"}, itemIDs(items))

	SortItems(items, SortPriceDesc)
	require.Equal(t, []string{"b", "a", "c"}, itemIDs(items))

	SortItems(items, SortPriceAsc)
	require.Equal(t, []string{"c", "a", "b"}, itemIDs(items))
}

func TestSortItemsIsStableOnTies(t *testing.T) {
	date := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	items := []Item{
		namedItem("first", billing.StatusPaid, 100, date),
		namedItem("second", billing.StatusPaid, 100, date),
		namedItem("third", billing.StatusPaid, 100, date),
	}

	SortItems(items, SortPriceDesc)
	require.Equal(t, []string{"first", "second", "third"}, itemIDs(items))

	SortItems(items, SortDateDesc)
	require.Equal(t, []string{"first", "second", "third"}, itemIDs(items))
}

func TestParseSortKeyDefaultsToDateDesc(t *testing.T) {
	require.Equal(t, SortDateDesc, ParseSortKey(""))
	require.Equal(t, SortDateDesc, ParseSortKey("alphabetical"))
	require.Equal(t, SortPriceAsc, ParseSortKey("price-asc"))
}

func itemIDs(items []Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
