package ledger

import "github.com/praxis-pm/praxis/internal/shared"

// DefaultBatchSize is the initial window and the step for batch slicing.
const DefaultBatchSize = 20

// Page returns the slice items[(page-1)*size : page*size] plus pagination
// metadata. Zero items yields zero pages and an empty slice.
func Page(items []Item, page, perPage int) ([]Item, shared.Pagination) {
	meta := shared.NewPagination(page, perPage, len(items))
	start := (meta.Page - 1) * meta.PerPage
	if start >= len(items) {
		return []Item{}, meta
	}
	end := start + meta.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}

// Batch returns the incremental slice items[0:visible] with batch metadata.
// Each "load more" raises visible by the step recorded in the metadata;
// callers reset visible to the default whenever a filter changes.
func Batch(items []Item, visible int) ([]Item, shared.BatchMeta) {
	meta := shared.NewBatchMeta(visible, DefaultBatchSize, len(items))
	return items[:meta.VisibleCount], meta
}
