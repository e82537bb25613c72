// Package buffer implements the per-goroutine append-only event log: a
// chunked backing store so a hot-path append is a pointer bump and an
// occasional chunk allocation, never a realloc-copy of the whole log.
package buffer

import "sync"

// Kind distinguishes the two halves of a Scope's lifetime.
type Kind uint8

const (
	Begin Kind = iota
	End
)

// Event is the fixed-width record appended on every Track/closer call.
type Event struct {
	CallSiteID int
	Timestamp  int64
	Kind       Kind
}

const (
	firstChunkEvents = 64
	maxChunkEvents   = 1 << 16
)

// Buffer is an ordered, append-only sequence of Events owned by exactly
// one goroutine during the recording phase. Append takes b.mu on every
// call; the lock is uncontended except at the rare moment a drain swaps
// the chunk list out from under it.
type Buffer struct {
	mu          sync.Mutex
	chunks      [][]Event
	goroutineID uint64
}

// New returns an empty Buffer identified by goroutineID, an opaque handle
// assigned by the registry (see internal/registry) rather than a real OS
// thread id, which Go does not expose.
func New(goroutineID uint64) *Buffer {
	return &Buffer{goroutineID: goroutineID}
}

// GoroutineID returns the opaque handle this buffer was created with.
func (b *Buffer) GoroutineID() uint64 {
	return b.goroutineID
}

// Append adds e to the end of the log. Safe to call only from the
// goroutine that owns b (or, for tests, from a single synchronized
// caller); concurrent Append calls on the same Buffer are not supported,
// matching spec's single-writer-per-buffer contract.
func (b *Buffer) Append(e Event) {
	b.mu.Lock()
	n := len(b.chunks)
	if n == 0 || len(b.chunks[n-1]) == cap(b.chunks[n-1]) {
		b.chunks = append(b.chunks, make([]Event, 0, nextChunkCap(n)))
		n++
	}
	b.chunks[n-1] = append(b.chunks[n-1], e)
	b.mu.Unlock()
}

func nextChunkCap(numChunksSoFar int) int {
	c := firstChunkEvents << numChunksSoFar
	if c > maxChunkEvents || c <= 0 {
		return maxChunkEvents
	}
	return c
}

// Drain atomically swaps out the current chunk list for an empty one and
// returns the events that had accumulated, in program order.
func (b *Buffer) Drain() []Event {
	b.mu.Lock()
	chunks := b.chunks
	b.chunks = nil
	b.mu.Unlock()

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total == 0 {
		return nil
	}
	out := make([]Event, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
