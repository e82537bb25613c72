// Package result implements the ResultAssembler: applies ResultSettings'
// filters to per-call-site statistics and produces the Summary and Detail
// table rows, in the order the public API renders them.
package result

import (
	"sort"

	"github.com/Compaile/ctrack/internal/callsite"
	"github.com/Compaile/ctrack/internal/interval"
	"github.com/Compaile/ctrack/internal/reconstruct"
	"github.com/Compaile/ctrack/internal/stats"
)

// Settings mirrors ctrack.ResultSettings.
type Settings struct {
	NonCenterPercent                int
	MinPercentActiveExclusive       float64
	PercentExcludeFastestActiveExcl float64
}

// SummaryRow is one line of the Summary table (spec.md §4.7 point 3).
type SummaryRow struct {
	CallSite         *callsite.CallSite
	Calls            int
	PercentAEBracket float64 // fraction of total active-exclusive inside the center bracket
	PercentAEAll     float64 // fraction of total active-exclusive, noise-suppressed
	TimeAEAll        int64   // display_active_exclusive: all-pairs active-exclusive, fastest-excluded
	TimeAAll         int64   // active time across all pairs
}

// DetailRow is the full per-call-site statistics block (spec.md §3).
type DetailRow struct {
	CallSite *callsite.CallSite
	Stats    stats.PerSiteStats
}

// Tables is the pair of rendered-ready tables plus metadata, as specified
// in spec.md §3.
type Tables struct {
	Summary []SummaryRow
	Detail  []DetailRow

	StartTime   int64
	EndTime     int64
	TimeTotal   int64
	TimeTracked int64

	Settings Settings
	Errors   []error
}

// Assemble applies the ResultSettings filters and produces Tables.
// bySite must contain every Pair recorded for a call-site (not just its
// center window) so the fastest-exclusion filter in step 2 can recompute
// active-exclusive over an arbitrary sub-range of each site's own pairs.
func Assemble(table *callsite.Table, bySite map[int][]reconstruct.Pair, allStats []stats.PerSiteStats, settings Settings, startTime, endTime int64, errs []error) Tables {
	display := make(map[int]int64, len(allStats))
	for _, st := range allStats {
		display[st.CallSiteID] = displayActiveExclusive(bySite[st.CallSiteID], settings.PercentExcludeFastestActiveExcl)
	}

	var totalActiveExclusive int64
	for _, v := range display {
		totalActiveExclusive += v
	}

	minActiveExclusive := int64(float64(totalActiveExclusive) * clampPercent(settings.MinPercentActiveExclusive) / 100)

	type row struct {
		st      stats.PerSiteStats
		display int64
	}
	var kept []row
	for _, st := range allStats {
		if st.CenterActiveExclusive < minActiveExclusive {
			continue
		}
		kept = append(kept, row{st: st, display: display[st.CallSiteID]})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].display > kept[j].display
	})

	summary := make([]SummaryRow, 0, len(kept))
	detail := make([]DetailRow, 0, len(kept))
	for _, r := range kept {
		cs := table.Get(r.st.CallSiteID)
		var bracket, all float64
		if totalActiveExclusive > 0 {
			bracket = float64(r.st.CenterActiveExclusive) / float64(totalActiveExclusive)
			all = float64(r.display) / float64(totalActiveExclusive)
		}
		summary = append(summary, SummaryRow{
			CallSite:         cs,
			Calls:            r.st.Count,
			PercentAEBracket: bracket,
			PercentAEAll:     all,
			TimeAEAll:        r.display,
			TimeAAll:         r.st.ActiveAll,
		})
		detail = append(detail, DetailRow{CallSite: cs, Stats: r.st})
	}

	timeTotal := endTime - startTime
	if timeTotal < 0 {
		timeTotal = 0
	}

	return Tables{
		Summary:     summary,
		Detail:      detail,
		StartTime:   startTime,
		EndTime:     endTime,
		TimeTotal:   timeTotal,
		TimeTracked: timeTracked(allStats, bySite),
		Settings:    settings,
		Errors:      errs,
	}
}

// displayActiveExclusive recomputes a call-site's active-exclusive time
// after dropping the fastest percent% of its own pairs (by duration), to
// suppress the noise of a chronic-cheap-but-frequent call inflating a
// site's apparent cost (spec.md §4.7 point 2).
func displayActiveExclusive(pairs []reconstruct.Pair, percent float64) int64 {
	if len(pairs) == 0 {
		return 0
	}
	sorted := make([]reconstruct.Pair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool {
		return (sorted[i].End - sorted[i].Begin) < (sorted[j].End - sorted[j].Begin)
	})
	exclude := int(float64(len(sorted)) * clampPercent(percent) / 100)
	remaining := sorted[exclude:]
	if len(remaining) == 0 {
		return 0
	}

	ownIntervals := make([]interval.Interval, len(remaining))
	var children []interval.Interval
	for i, p := range remaining {
		ownIntervals[i] = interval.Interval{Begin: p.Begin, End: p.End}
		children = append(children, p.Children...)
	}
	_, active := interval.Active(ownIntervals)
	return interval.ActiveExclusive(active, children)
}

// timeTracked is the union, across every call-site, of that site's active
// interval set (spec.md §4.7 point 5).
func timeTracked(allStats []stats.PerSiteStats, bySite map[int][]reconstruct.Pair) int64 {
	var all []interval.Interval
	for _, st := range allStats {
		for _, p := range bySite[st.CallSiteID] {
			all = append(all, interval.Interval{Begin: p.Begin, End: p.End})
		}
	}
	_, total := interval.Active(all)
	return total
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
