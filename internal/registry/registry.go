// Package registry is the process-wide directory of per-goroutine
// EventBuffers. Go exposes neither thread-local storage nor a
// thread-termination hook, so "goroutine identity" here is obtained via
// github.com/petermattis/goid (the same go:linkname-into-the-runtime
// technique CockroachDB uses for its own goroutine-scoped instrumentation,
// see cputime/grunning in that codebase) rather than a platform thread id.
package registry

import (
	"sync"

	"github.com/petermattis/goid"

	"github.com/Compaile/ctrack/internal/buffer"
)

// Registry is a process-wide singleton directory of live EventBuffers.
// There is no distinct orphan set (spec.md's "hand-off on thread exit"
// has no Go equivalent: goroutines have no termination hook), so a
// goroutine that has since exited simply leaves its Buffer behind as an
// ordinary, no-longer-appended-to live buffer; DrainAll collects it
// exactly as it would any other. See DESIGN.md for the Open Question
// this resolves.
//
// Current's steady-state path (every goroutine's second and later call)
// goes through byGID, a sync.Map: a lock-free read once a goroutine has
// registered. mu guards only the rare first-registration insert and
// DrainAll's enumeration, mirroring ctrack.hpp's fetch_event_t_id, which
// takes its store::event_mutex only when a thread's thread_local
// thread_id pointer is still unset.
type Registry struct {
	mu      sync.Mutex
	byGID   sync.Map // int64 -> *buffer.Buffer
	ordered []*buffer.Buffer
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// global is the process-wide instance backing the package-level
// functions used by ctrack's Track/TrackName/TrackDev*/TrackProd*.
var global = New()

// Global returns the process-wide Registry.
func Global() *Registry { return global }

// Current returns the Buffer belonging to the calling goroutine, creating
// it on first use for that goroutine. Every call after a goroutine's
// first takes no lock: it is a single sync.Map load.
func (r *Registry) Current() *buffer.Buffer {
	gid := goid.Get()

	if v, ok := r.byGID.Load(gid); ok {
		return v.(*buffer.Buffer)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.byGID.Load(gid); ok {
		return v.(*buffer.Buffer)
	}
	b := buffer.New(uint64(gid))
	r.byGID.Store(gid, b)
	r.ordered = append(r.ordered, b)
	return b
}

// DrainedBuffer is one goroutine's events as of a single DrainAll call.
type DrainedBuffer struct {
	GoroutineID uint64
	Events      []buffer.Event
}

// DrainAll atomically gathers every buffer's current contents and clears
// them, returning the union. Two successive calls return disjoint event
// sets whose union covers exactly the events recorded in between (the
// registry-level mutex is held only long enough to snapshot the buffer
// list; each buffer's own internal swap is independently synchronized, so
// recording on other goroutines is blocked for no longer than that single
// buffer's own swap).
func (r *Registry) DrainAll() []DrainedBuffer {
	r.mu.Lock()
	bufs := make([]*buffer.Buffer, len(r.ordered))
	copy(bufs, r.ordered)
	r.mu.Unlock()

	out := make([]DrainedBuffer, 0, len(bufs))
	for _, b := range bufs {
		events := b.Drain()
		if len(events) == 0 {
			continue
		}
		out = append(out, DrainedBuffer{GoroutineID: b.GoroutineID(), Events: events})
	}
	return out
}

// Reset discards all known buffers, used by tests that need a clean
// registry between scenarios.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.byGID = sync.Map{}
	r.ordered = nil
	r.mu.Unlock()
}
