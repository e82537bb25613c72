//go:build ctrack_disable

package ctrack

// Track is a no-op: the top-level ctrack_disable build tag removes
// recording from every enablement group, including this default one.
func Track() func() { return noop }

// TrackName is a no-op under ctrack_disable.
func TrackName(name string) func() { return noop }
