// Package interval implements the sort-and-sweep union used to compute
// active and active-exclusive time: the measure of the union of
// wall-clock intervals during which a call-site (or its direct tracked
// children) was on some goroutine's stack. Grounded in
// original_source/include/ctrack.hpp's sorted_create_grouped_simple_events.
package interval

import (
	"sort"

	"github.com/Compaile/ctrack/internal/reconstruct"
)

type Interval = reconstruct.Interval

// Merge sorts ivs by start and merges overlapping or touching intervals
// into a minimal disjoint set, in ascending order. Merging all of a
// call-site's raw Pair intervals (not just per-goroutine maximal ones)
// already produces the correct union: a nested same-call-site Pair's
// interval is a subset of its enclosing Pair's interval on the same
// goroutine, so it disappears into the merge without special-casing
// recursion (spec.md §4.5's "reference-counted depth" collapsing falls
// out of the general sweep for free).
func Merge(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Begin < sorted[j].Begin })

	out := make([]Interval, 0, len(sorted))
	cur := sorted[0]
	for _, iv := range sorted[1:] {
		if iv.Begin <= cur.End {
			if iv.End > cur.End {
				cur.End = iv.End
			}
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	out = append(out, cur)
	return out
}

// Sum returns the total length of a disjoint (already-merged) interval
// set. Passing an unmerged set over-counts overlaps, so callers should
// Merge first.
func Sum(ivs []Interval) int64 {
	var total int64
	for _, iv := range ivs {
		total += iv.End - iv.Begin
	}
	return total
}

// Active returns the merged active interval set and its total duration
// for a set of Pair intervals belonging to one call-site.
func Active(ivs []Interval) (merged []Interval, duration int64) {
	merged = Merge(ivs)
	return merged, Sum(merged)
}

// ActiveExclusive returns the active-exclusive duration for a call-site
// given its own active interval set (already merged) and the union of
// its Pairs' direct tracked children. Per spec.md §4.5, active-exclusive
// is active time during which no tracked descendant sits on top of the
// call-site; the direct-child union is a linear-time equivalent to a
// full per-timestamp top-of-stack scan (see SPEC_FULL.md §4.6).
func ActiveExclusive(ownActive int64, childIntervals []Interval) int64 {
	_, childDuration := Active(childIntervals)
	excl := ownActive - childDuration
	if excl < 0 {
		return 0
	}
	return excl
}
