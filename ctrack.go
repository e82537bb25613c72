// Package ctrack is an in-process function-timing library: scoped markers
// record begin/end events per call-site on the owning goroutine's own
// event buffer; an offline drain reconstructs per-goroutine call stacks
// into per-call-site statistics (inclusive, active, and active-exclusive
// time, the last two correctly handling recursion and concurrent overlap
// across goroutines) and renders human-readable tables.
//
// Typical use:
//
//	func DoWork() {
//		defer ctrack.Track()()
//		...
//	}
//
//	...
//	ctrack.Print(ctrack.DefaultSettings())
package ctrack

import (
	"bytes"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/Compaile/ctrack/internal/buffer"
	"github.com/Compaile/ctrack/internal/callsite"
	"github.com/Compaile/ctrack/internal/clock"
	"github.com/Compaile/ctrack/internal/config"
	"github.com/Compaile/ctrack/internal/obslog"
	"github.com/Compaile/ctrack/internal/reconstruct"
	"github.com/Compaile/ctrack/internal/registry"
	"github.com/Compaile/ctrack/internal/result"
	"github.com/Compaile/ctrack/internal/stats"
	"github.com/Compaile/ctrack/render"
)

// Settings mirrors spec.md §3's ResultSettings: the knobs accepted by
// SnapshotAndDrain, Print, and ResultAsString.
type Settings struct {
	NonCenterPercent                int
	MinPercentActiveExclusive       float64
	PercentExcludeFastestActiveExcl float64
}

// DefaultSettings returns the defaults used by the simple entry points:
// non_center_percent=1, no minimum-percent filtering, no fastest-exclusion.
func DefaultSettings() Settings {
	return Settings{NonCenterPercent: 1}
}

// Tables is the pair of rendered-ready tables plus metadata produced by a
// drain, as specified in spec.md §3.
type Tables = result.Tables

var table = callsite.New()

var parallelAggregation atomic.Bool

func init() {
	parallelAggregation.Store(true)
}

// SetParallelAggregation toggles whether SnapshotAndDrain fans out its
// per-call-site statistics computation across goroutines. A hint only:
// output is identical either way (spec.md §4.8/§9).
func SetParallelAggregation(enabled bool) {
	parallelAggregation.Store(enabled)
}

// ParallelAggregation reports the current SetParallelAggregation setting.
func ParallelAggregation() bool {
	return parallelAggregation.Load()
}

// SetLogger redirects ctrack's internal diagnostics (reconstruction
// errors, drain summaries) to logger. The default logger is silent.
func SetLogger(logger zerolog.Logger) {
	obslog.Set(logger)
}

// LoadSettings reads a YAML configuration file and returns the Settings
// it describes, additionally applying its parallel_aggregation hint (if
// present) via SetParallelAggregation.
func LoadSettings(path string) (Settings, error) {
	f, err := config.Load(path)
	if err != nil {
		return Settings{}, err
	}
	s := Settings{
		NonCenterPercent:                f.NonCenterPercent,
		MinPercentActiveExclusive:       f.MinPercentActiveExclusive,
		PercentExcludeFastestActiveExcl: f.PercentExcludeFastestActiveExcl,
	}
	if f.ParallelAggregation != nil {
		SetParallelAggregation(*f.ParallelAggregation)
	}
	return s, nil
}

// SnapshotAndDrain atomically reads every recorded event, clears the
// recording state, and computes Tables. A drain immediately following
// another drain with no intervening recording returns empty tables
// (spec.md §4.8, §8 invariant 6).
func SnapshotAndDrain(settings Settings) Tables {
	drained := registry.Global().DrainAll()

	bySite := make(map[int][]reconstruct.Pair)
	var errs []error
	for _, d := range drained {
		pairs, err := reconstruct.Reconstruct(d.GoroutineID, d.Events)
		if err != nil {
			obslog.ReconstructionError(d.GoroutineID, err)
			errs = append(errs, err)
			continue
		}
		for _, p := range pairs {
			bySite[p.CallSiteID] = append(bySite[p.CallSiteID], p)
		}
	}

	allStats := stats.ComputeAll(bySite, stats.Settings{
		NonCenterPercent: clampPercent(settings.NonCenterPercent),
	}, ParallelAggregation())

	startTime, endTime := timeRange(bySite)

	tables := result.Assemble(table, bySite, allStats, result.Settings{
		NonCenterPercent:                settings.NonCenterPercent,
		MinPercentActiveExclusive:       settings.MinPercentActiveExclusive,
		PercentExcludeFastestActiveExcl: settings.PercentExcludeFastestActiveExcl,
	}, startTime, endTime, errs)

	obslog.Drain(len(drained), totalEvents(drained), table.Len())
	return tables
}

// ResultAsString renders a drain's Tables without printing: Summary
// first, then Detail ordered slowest-to-fastest (spec.md §6).
func ResultAsString(settings Settings) string {
	t := SnapshotAndDrain(settings)
	var buf bytes.Buffer
	opts := render.DefaultOptions()
	_ = render.Summary(&buf, t, opts)
	_ = render.Detail(&buf, t, opts)
	return buf.String()
}

// Print writes a drain's Tables to standard output, Detail first and
// Summary last so Summary is the last thing seen on screen — the reverse
// of ResultAsString's ordering (spec.md §6).
func Print(settings Settings) error {
	t := SnapshotAndDrain(settings)
	opts := render.DefaultOptions()
	if err := render.Detail(os.Stdout, t, opts); err != nil {
		return err
	}
	return render.Summary(os.Stdout, t, opts)
}

func timeRange(bySite map[int][]reconstruct.Pair) (start, end int64) {
	first := true
	for _, pairs := range bySite {
		for _, p := range pairs {
			if first || p.Begin < start {
				start = p.Begin
			}
			if first || p.End > end {
				end = p.End
			}
			first = false
		}
	}
	return start, end
}

func totalEvents(drained []registry.DrainedBuffer) int {
	n := 0
	for _, d := range drained {
		n += len(d.Events)
	}
	return n
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// siteKey caches the CallSite resolved for a given (file, line, override
// name) coordinate. Every Track/TrackName/etc. call still runs
// runtime.Caller to obtain the key; only the first call at a given
// source line pays for runtime.FuncForPC and the call-site table's
// Resolve.
type siteKey struct {
	file string
	line int
	name string
}

var siteCache sync.Map // siteKey -> *callsite.CallSite

func resolveCallSite(skip int, name string) *callsite.CallSite {
	pc, file, line, _ := runtime.Caller(skip)
	k := siteKey{file: file, line: line, name: name}
	if v, ok := siteCache.Load(k); ok {
		return v.(*callsite.CallSite)
	}
	var function string
	if fn := runtime.FuncForPC(pc); fn != nil {
		function = fn.Name()
	}
	cs := table.Resolve(file, function, line, name)
	siteCache.Store(k, cs)
	return cs
}

var noop = func() {}

// track appends a Begin event for cs to the calling goroutine's buffer
// and returns the closer that appends the matching End. Shared by the
// three enablement groups' enabled variants.
func track(cs *callsite.CallSite) func() {
	buf := registry.Global().Current()
	buf.Append(buffer.Event{CallSiteID: cs.ID, Timestamp: clock.Now(), Kind: buffer.Begin})
	return func() {
		buf.Append(buffer.Event{CallSiteID: cs.ID, Timestamp: clock.Now(), Kind: buffer.End})
	}
}
