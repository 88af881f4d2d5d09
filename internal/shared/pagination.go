package shared

import "math"

// DefaultPerPage is the page size used when a listing does not specify one.
const DefaultPerPage = 20

// Pagination contains metadata for page-based listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata. A total of zero yields zero pages.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// BatchMeta contains metadata for incremental "load more" listings.
type BatchMeta struct {
	VisibleCount int
	HasMore      bool
	NextVisible  int
	Total        int
}

// NewBatchMeta computes batch metadata for a window of visible items over total.
// The step is the amount a subsequent "load more" extends the window by.
func NewBatchMeta(visible, step, total int) BatchMeta {
	if step <= 0 {
		step = DefaultPerPage
	}
	if visible <= 0 {
		visible = step
	}
	if visible > total {
		visible = total
	}
	meta := BatchMeta{VisibleCount: visible, Total: total, HasMore: visible < total}
	if meta.HasMore {
		meta.NextVisible = visible + step
	} else {
		meta.NextVisible = visible
	}
	return meta
}
