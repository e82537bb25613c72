package registry_test

import (
	"sync"
	"testing"

	"github.com/Compaile/ctrack/internal/buffer"
	"github.com/Compaile/ctrack/internal/registry"
)

func TestCurrentIsStablePerGoroutine(t *testing.T) {
	r := registry.New()
	a := r.Current()
	b := r.Current()
	if a != b {
		t.Fatalf("expected repeated Current() calls on the same goroutine to return the same buffer")
	}
}

func TestDrainAllCollectsEveryGoroutinesBuffer(t *testing.T) {
	r := registry.New()
	const goroutines = 8
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := r.Current()
			b.Append(buffer.Event{CallSiteID: i, Timestamp: int64(i), Kind: buffer.Begin})
			b.Append(buffer.Event{CallSiteID: i, Timestamp: int64(i) + 1, Kind: buffer.End})
		}(i)
	}
	wg.Wait()

	drained := r.DrainAll()
	if len(drained) != goroutines {
		t.Fatalf("DrainAll() returned %d buffers, want %d", len(drained), goroutines)
	}
	total := 0
	for _, d := range drained {
		total += len(d.Events)
	}
	if total != goroutines*2 {
		t.Fatalf("DrainAll() returned %d events total, want %d", total, goroutines*2)
	}
}

func TestSuccessiveDrainsReturnDisjointEvents(t *testing.T) {
	r := registry.New()
	b := r.Current()
	b.Append(buffer.Event{CallSiteID: 1, Timestamp: 1, Kind: buffer.Begin})
	b.Append(buffer.Event{CallSiteID: 1, Timestamp: 2, Kind: buffer.End})

	first := r.DrainAll()
	if len(first) != 1 || len(first[0].Events) != 2 {
		t.Fatalf("first drain = %+v, want one buffer with two events", first)
	}

	second := r.DrainAll()
	if len(second) != 0 {
		t.Fatalf("second drain with no recording in between = %+v, want empty", second)
	}
}

func TestResetDiscardsKnownBuffers(t *testing.T) {
	r := registry.New()
	b := r.Current()
	b.Append(buffer.Event{CallSiteID: 1, Timestamp: 1, Kind: buffer.Begin})

	r.Reset()

	if drained := r.DrainAll(); len(drained) != 0 {
		t.Fatalf("DrainAll() after Reset = %+v, want empty", drained)
	}
}
