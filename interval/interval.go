// Package interval implements the half-open time interval algebra that the
// availability pipeline is built on. All intervals are [Start, End) spans;
// within one computation every instant carries the same *time.Location.
package interval

import (
	"sort"
	"time"
)

// Interval is a half-open [Start, End) span of time. It is a value object:
// two intervals with equal bounds are interchangeable.
type Interval struct {
	Start time.Time
	End   time.Time
}

// New returns the interval [start, end). ok is false when the bounds are
// malformed (start >= end); callers drop such intervals instead of failing
// the whole computation.
func New(start, end time.Time) (iv Interval, ok bool) {
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// Valid reports whether Start < End holds.
func (iv Interval) Valid() bool {
	return iv.Start.Before(iv.End)
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether two half-open intervals share at least one
// instant. Touching at a boundary is not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether t lies inside [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Merge coalesces busy intervals into their minimal sorted union.
//
// Malformed inputs (start >= end) are dropped. The sweep treats touching
// intervals as overlapping, so [9:00,10:00) and [10:00,11:00) merge into
// [9:00,11:00). The result is sorted by start and pairwise strictly
// separated: merged[i].End < merged[i+1].Start for every neighbour pair.
// Merge is idempotent and insensitive to input order. Empty input yields
// nil.
func Merge(ivals []Interval) []Interval {
	valid := make([]Interval, 0, len(ivals))
	for _, iv := range ivals {
		if iv.Valid() {
			valid = append(valid, iv)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Start.Before(valid[j].Start)
	})

	merged := make([]Interval, 0, len(valid))
	cur := valid[0]
	for _, iv := range valid[1:] {
		if !iv.Start.After(cur.End) {
			if iv.End.After(cur.End) {
				cur.End = iv.End
			}
			continue
		}
		merged = append(merged, cur)
		cur = iv
	}
	return append(merged, cur)
}

// OverlapsAny reports whether iv overlaps any interval in the sorted,
// disjoint set produced by Merge. The scan stops at the first busy interval
// starting at or after iv.End.
func (iv Interval) OverlapsAny(busy []Interval) bool {
	for _, b := range busy {
		if !b.Start.Before(iv.End) {
			return false
		}
		if iv.Overlaps(b) {
			return true
		}
	}
	return false
}
