package ledger

import "sort"

// SortKey selects the ledger ordering.
type SortKey string

const (
	SortDateDesc  SortKey = "date-desc"
	SortDateAsc   SortKey = "date-asc"
	SortPriceDesc SortKey = "price-desc"
	SortPriceAsc  SortKey = "price-asc"
)

// SortItems orders items in place. Sorting is stable, so ties keep their
// pre-sort relative order; there is no secondary key. An empty or unknown
// key falls back to date-desc.
func SortItems(items []Item, key SortKey) {
	switch key {
	case SortDateAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })
	case SortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Amount > items[j].Amount })
	case SortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Amount < items[j].Amount })
	default:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Date.After(items[j].Date) })
	}
}

// ParseSortKey validates a user-supplied sort key, defaulting to date-desc.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortDateAsc, SortPriceDesc, SortPriceAsc:
		return SortKey(s)
	default:
		return SortDateDesc
	}
}
