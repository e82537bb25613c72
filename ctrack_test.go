package ctrack

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Compaile/ctrack/internal/buffer"
	"github.com/Compaile/ctrack/internal/clock"
	"github.com/Compaile/ctrack/internal/registry"
)

// resetRecording clears the registry so each scenario starts from an
// empty recording state, independent of whatever earlier tests recorded.
func resetRecording(t *testing.T) {
	t.Helper()
	registry.Global().Reset()
}

func TestSingleCallTenMilliseconds(t *testing.T) {
	resetRecording(t)

	func() {
		defer Track()()
		time.Sleep(10 * time.Millisecond)
	}()

	tables := SnapshotAndDrain(DefaultSettings())
	require.Len(t, tables.Detail, 1)

	d := tables.Detail[0]
	assert.Equal(t, 1, d.Stats.Count)
	assert.Equal(t, 1, d.Stats.ThreadCount)
	assert.InDelta(t, 10*time.Millisecond, time.Duration(d.Stats.SumInclusive), float64(5*time.Millisecond))
	assert.Equal(t, float64(0), d.Stats.StdDev)
	assert.Equal(t, float64(0), d.Stats.CV)
	assert.Equal(t, float64(d.Stats.Center.Min), d.Stats.Center.Mean)
	assert.Equal(t, d.Stats.Center.Mean, float64(d.Stats.Center.Max))
}

func TestTwoSiblingsUnderOneParent(t *testing.T) {
	resetRecording(t)

	func() {
		defer TrackName("parent")()
		time.Sleep(time.Millisecond)
		func() {
			defer TrackName("child-1")()
			time.Sleep(5 * time.Millisecond)
		}()
		func() {
			defer TrackName("child-2")()
			time.Sleep(3 * time.Millisecond)
		}()
		time.Sleep(time.Millisecond)
	}()

	tables := SnapshotAndDrain(DefaultSettings())
	stats := byFunction(tables)

	require.Contains(t, stats, "parent")
	require.Contains(t, stats, "child-1")
	require.Contains(t, stats, "child-2")

	parent := stats["parent"]
	assert.InDelta(t, 10*time.Millisecond, time.Duration(parent.SumInclusive), float64(5*time.Millisecond))
	assert.InDelta(t, 2*time.Millisecond, time.Duration(parent.ActiveExclusiveAll), float64(3*time.Millisecond))

	child1 := stats["child-1"]
	assert.InDelta(t, 5*time.Millisecond, time.Duration(child1.ActiveExclusiveAll), float64(3*time.Millisecond))

	child2 := stats["child-2"]
	assert.InDelta(t, 3*time.Millisecond, time.Duration(child2.ActiveExclusiveAll), float64(3*time.Millisecond))
}

func TestDiamondCallGraph(t *testing.T) {
	resetRecording(t)

	var d func()
	d = func() {
		defer TrackName("D")()
		time.Sleep(3 * time.Millisecond)
	}
	b := func() {
		defer TrackName("B")()
		time.Sleep(2 * time.Millisecond)
		d()
	}
	c := func() {
		defer TrackName("C")()
		time.Sleep(2 * time.Millisecond)
		d()
	}
	func() {
		defer TrackName("A")()
		time.Sleep(2 * time.Millisecond)
		b()
		c()
	}()

	tables := SnapshotAndDrain(DefaultSettings())
	stats := byFunction(tables)

	require.Equal(t, 2, stats["D"].Count)
	assert.InDelta(t, 6*time.Millisecond, time.Duration(stats["D"].ActiveExclusiveAll), float64(4*time.Millisecond))
	assert.InDelta(t, 2*time.Millisecond, time.Duration(stats["A"].ActiveExclusiveAll), float64(3*time.Millisecond))
	assert.InDelta(t, 12*time.Millisecond, time.Duration(stats["A"].SumInclusive), float64(5*time.Millisecond))
}

func TestRecursiveFactorial(t *testing.T) {
	resetRecording(t)

	var fact func(n int) int
	fact = func(n int) int {
		defer TrackName("factorial")()
		time.Sleep(5 * time.Millisecond)
		if n <= 1 {
			return 1
		}
		return n * fact(n-1)
	}
	fact(5)

	tables := SnapshotAndDrain(DefaultSettings())
	stats := byFunction(tables)

	f := stats["factorial"]
	require.Equal(t, 5, f.Count)
	assert.LessOrEqual(t, f.ActiveExclusiveAll, f.SumInclusive)
	assert.LessOrEqual(t, f.ActiveAll, f.SumInclusive)
}

func TestFourGoroutinesFullyOverlapped(t *testing.T) {
	resetRecording(t)

	const goroutines = 4
	var start sync.WaitGroup
	var done sync.WaitGroup
	start.Add(1)
	for i := 0; i < goroutines; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			start.Wait()
			defer TrackName("barrier-sync")()
			time.Sleep(20 * time.Millisecond)
		}()
	}
	start.Done()
	done.Wait()

	tables := SnapshotAndDrain(DefaultSettings())
	stats := byFunction(tables)

	barrier := stats["barrier-sync"]
	require.Equal(t, goroutines, barrier.Count)
	require.Equal(t, goroutines, barrier.ThreadCount)
	assert.InDelta(t, 80*time.Millisecond, time.Duration(barrier.SumInclusive), float64(20*time.Millisecond))
	assert.InDelta(t, 20*time.Millisecond, time.Duration(barrier.ActiveAll), float64(15*time.Millisecond))
}

func TestMalformedStreamExcludesOnlyThatGoroutine(t *testing.T) {
	resetRecording(t)

	malformed := resolveCallSite(1, "malformed-site")
	other := resolveCallSite(1, "also-malformed")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := registry.Global().Current()
		buf.Append(buffer.Event{CallSiteID: malformed.ID, Timestamp: clock.Now(), Kind: buffer.Begin})
		// Mismatched call site: End does not match the top of this
		// goroutine's stack, so its whole stream is malformed.
		buf.Append(buffer.Event{CallSiteID: other.ID, Timestamp: clock.Now(), Kind: buffer.End})
	}()
	wg.Wait()

	func() {
		defer TrackName("good-call")()
		time.Sleep(time.Millisecond)
	}()

	tables := SnapshotAndDrain(DefaultSettings())

	require.Len(t, tables.Errors, 1)
	stats := byFunction(tables)
	require.Contains(t, stats, "good-call")
	require.NotContains(t, stats, "malformed-site")
	require.NotContains(t, stats, "also-malformed")
}

func TestSecondDrainWithNoRecordingIsEmpty(t *testing.T) {
	resetRecording(t)

	func() {
		defer Track()()
	}()
	_ = SnapshotAndDrain(DefaultSettings())

	second := SnapshotAndDrain(DefaultSettings())
	assert.Empty(t, second.Summary)
	assert.Empty(t, second.Detail)
	assert.Equal(t, int64(0), second.TimeTotal)
}

func byFunction(tables Tables) map[string]statsByName {
	out := make(map[string]statsByName)
	for _, d := range tables.Detail {
		out[d.CallSite.Function] = statsByName{
			Count:              d.Stats.Count,
			ThreadCount:        d.Stats.ThreadCount,
			SumInclusive:       d.Stats.SumInclusive,
			ActiveAll:          d.Stats.ActiveAll,
			ActiveExclusiveAll: d.Stats.ActiveExclusiveAll,
		}
	}
	return out
}

type statsByName struct {
	Count              int
	ThreadCount        int
	SumInclusive       int64
	ActiveAll          int64
	ActiveExclusiveAll int64
}
