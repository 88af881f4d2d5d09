package ledger

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/praxis-pm/praxis/internal/billing"
)

// StatusAll disables status narrowing.
const StatusAll = "all"

// FilterState narrows and orders the ledger. Zero-value fields are inactive.
type FilterState struct {
	From   time.Time
	To     time.Time
	Status string
	Search string
	Sort   SortKey
}

// ApplyFilters returns the items passing the date window, status and patient
// name search. Date and status narrowing run against every item, virtual ones
// included: virtual items never went through the upstream query, so anything
// pushed to the source must be repeated here. Search matches the patient
// display name only, case- and accent-insensitively. Debouncing the search
// input is a caller-side timing policy; this function is synchronous.
func ApplyFilters(items []Item, state FilterState) []Item {
	needle := normalizeSearch(state.Search)
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if !state.From.IsZero() && item.Date.Before(state.From) {
			continue
		}
		if !state.To.IsZero() && item.Date.After(state.To) {
			continue
		}
		if state.Status != "" && state.Status != StatusAll && item.Status != billing.PaymentStatus(state.Status) {
			continue
		}
		if needle != "" && !strings.Contains(normalizeSearch(item.PatientName), needle) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// normalizeSearch lowercases and strips combining marks so accented and plain
// spellings of patient names compare equal.
func normalizeSearch(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
