// Package obslog provides the structured logger used to report
// reconstruction errors and drain summaries. Silent by default, as the
// teacher's own examples/tracing harness is quiet on the steady-state
// recording path and only logs on fatal setup errors.
package obslog

import (
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(io.Discard)
	current.Store(&l)
}

// Set installs logger as the package-wide destination for ctrack's
// internal diagnostics.
func Set(logger zerolog.Logger) {
	current.Store(&logger)
}

// Logger returns the currently installed logger.
func Logger() *zerolog.Logger {
	return current.Load()
}

// ReconstructionError logs one goroutine's abandoned event stream.
func ReconstructionError(goroutineID uint64, err error) {
	Logger().Warn().
		Uint64("goroutine_id", goroutineID).
		Err(err).
		Msg("ctrack: discarding goroutine's events after reconstruction error")
}

// Drain logs a summary of one snapshot_and_drain call.
func Drain(buffers, events, callSites int) {
	Logger().Debug().
		Int("buffers", buffers).
		Int("events", events).
		Int("call_sites", callSites).
		Msg("ctrack: drained")
}
