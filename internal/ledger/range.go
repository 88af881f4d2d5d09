package ledger

import (
	"fmt"
	"time"
)

// RangeTag selects a preset reporting window.
type RangeTag string

const (
	RangeWeek    RangeTag = "week"
	RangeMonth   RangeTag = "month"
	RangeQuarter RangeTag = "quarter"
	RangeYear    RangeTag = "year"
)

// Range is a resolved [Start, End] window. End is the reference instant the
// range was resolved against.
type Range struct {
	Start time.Time
	End   time.Time
}

// Resolve maps a range tag and a reference instant to a concrete window.
// week is rolling (now minus seven days); month and year snap to the first
// day of the current calendar month and year. quarter is the rolling window
// starting on the first day of the month two months back, not a fiscal
// quarter. Unknown tags are a programming error and panic; validate
// user-supplied tags with ParseRangeTag first.
func Resolve(tag RangeTag, now time.Time) Range {
	switch tag {
	case RangeWeek:
		return Range{Start: now.AddDate(0, 0, -7), End: now}
	case RangeMonth:
		return Range{Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), End: now}
	case RangeQuarter:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{Start: monthStart.AddDate(0, -2, 0), End: now}
	case RangeYear:
		return Range{Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), End: now}
	default:
		panic(fmt.Sprintf("ledger: unknown range tag %q", tag))
	}
}

// ParseRangeTag validates a user-supplied tag string.
func ParseRangeTag(s string) (RangeTag, error) {
	switch RangeTag(s) {
	case RangeWeek, RangeMonth, RangeQuarter, RangeYear:
		return RangeTag(s), nil
	}
	return "", fmt.Errorf("ledger: invalid range tag %q", s)
}
