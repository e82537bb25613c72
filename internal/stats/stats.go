// Package stats computes per-call-site aggregate statistics: counts,
// means, standard deviation, coefficient of variation, and the three
// percentile windows (fastest/center/slowest), plus the active and
// active-exclusive metrics restricted to each window.
package stats

import (
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Compaile/ctrack/internal/interval"
	"github.com/Compaile/ctrack/internal/reconstruct"
)

// Window holds min/mean/max for one percentile band. Center windows
// additionally populate Median (and, at the PerSiteStats level, the
// active/active-exclusive fields). Present is false when the window
// rounded to zero entries (spec.md §7): callers must not treat a false
// Present as a zero duration.
type Window struct {
	Present bool
	Count   int
	Min     int64
	Mean    float64
	Max     int64
	Median  int64
}

// PerSiteStats is the full statistics record for one call-site, as
// specified in spec.md §3.
type PerSiteStats struct {
	CallSiteID  int
	Count       int
	ThreadCount int

	SumInclusive int64
	Mean         float64
	StdDev       float64
	CV           float64

	Fastest Window
	Center  Window
	Slowest Window

	CenterActive          int64
	CenterActiveExclusive int64

	ActiveAll          int64
	ActiveExclusiveAll int64
}

// Settings mirrors ctrack.ResultSettings' windowing knob; the filtering
// knobs live in internal/result, one layer up.
type Settings struct {
	NonCenterPercent int // 0..100, clamped by caller
}

// Compute derives PerSiteStats for one call-site from every Pair recorded
// for it, across every goroutine.
func Compute(callSiteID int, pairs []reconstruct.Pair, settings Settings) PerSiteStats {
	out := PerSiteStats{CallSiteID: callSiteID, Count: len(pairs)}
	if len(pairs) == 0 {
		return out
	}

	sorted := make([]reconstruct.Pair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool {
		return duration(sorted[i]) < duration(sorted[j])
	})

	threads := make(map[uint64]struct{}, len(pairs))
	var sum int64
	for _, p := range pairs {
		sum += duration(p)
		threads[p.GoroutineID] = struct{}{}
	}
	out.ThreadCount = len(threads)
	out.SumInclusive = sum
	mean := float64(sum) / float64(len(pairs))
	out.Mean = mean

	if mean != 0 {
		var sq float64
		for _, p := range pairs {
			d := float64(duration(p)) - mean
			sq += d * d
		}
		sd := math.Sqrt(sq / float64(len(pairs)))
		out.StdDev = sd
		out.CV = sd / mean
	}

	n := len(sorted)
	amountNonCenter := n * settings.NonCenterPercent / 100
	// A non_center_percent of 50% or more collapses the center window
	// entirely (spec.md §7): cap each tail at half the samples so the
	// two tails meet without crossing.
	if amountNonCenter > n/2 {
		amountNonCenter = n / 2
	}

	fastest := sorted[:amountNonCenter]
	slowest := sorted[n-amountNonCenter:]
	center := sorted[amountNonCenter : n-amountNonCenter]

	out.Fastest = windowStats(fastest, false)
	out.Slowest = windowStats(slowest, false)
	out.Center = windowStats(center, true)

	out.ActiveAll, out.ActiveExclusiveAll = activeAndExclusive(pairs)
	if len(center) > 0 {
		out.CenterActive, out.CenterActiveExclusive = activeAndExclusive(center)
	}

	return out
}

// ComputeAll fans out one goroutine per call-site (bounded by GOMAXPROCS)
// when parallel is true; results are written into a pre-sized slice
// indexed by position so the output is identical regardless of
// completion order (spec.md §4.8/§9).
func ComputeAll(bySite map[int][]reconstruct.Pair, settings Settings, parallel bool) []PerSiteStats {
	ids := make([]int, 0, len(bySite))
	for id := range bySite {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]PerSiteStats, len(ids))
	if !parallel || len(ids) <= 1 {
		for i, id := range ids {
			out[i] = Compute(id, bySite[id], settings)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(max(1, runtime.GOMAXPROCS(0)))
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			out[i] = Compute(id, bySite[id], settings)
			return nil
		})
	}
	_ = g.Wait() // Compute never returns an error
	return out
}

func duration(p reconstruct.Pair) int64 {
	return p.End - p.Begin
}

func windowStats(pairs []reconstruct.Pair, withMedian bool) Window {
	if len(pairs) == 0 {
		return Window{Present: false}
	}
	w := Window{Present: true, Count: len(pairs)}
	w.Min = duration(pairs[0])
	w.Max = duration(pairs[len(pairs)-1])
	var sum int64
	for _, p := range pairs {
		sum += duration(p)
	}
	w.Mean = float64(sum) / float64(len(pairs))
	if withMedian {
		mid := len(pairs) / 2
		if len(pairs)%2 == 1 {
			w.Median = duration(pairs[mid])
		} else {
			w.Median = (duration(pairs[mid]) + duration(pairs[mid-1])) / 2
		}
	}
	return w
}

func activeAndExclusive(pairs []reconstruct.Pair) (active, activeExclusive int64) {
	ownIntervals := make([]interval.Interval, len(pairs))
	var children []interval.Interval
	for i, p := range pairs {
		ownIntervals[i] = interval.Interval{Begin: p.Begin, End: p.End}
		children = append(children, p.Children...)
	}
	_, active = interval.Active(ownIntervals)
	activeExclusive = interval.ActiveExclusive(active, children)
	return active, activeExclusive
}
