//go:build !ctrack_disable

package ctrack

// Track begins a scoped recording at the call site of this call,
// returning the closer that ends it. The call site is identified by
// source file and line; use defer to guarantee the matching End:
//
//	defer ctrack.Track()()
func Track() func() {
	return track(resolveCallSite(2, ""))
}

// TrackName is Track, but the call site's identity uses name instead of
// the resolved function name. Two TrackName calls at different source
// locations with the same name are distinct call sites; a TrackName and
// a bare Track at the same source coordinates are also distinct.
func TrackName(name string) func() {
	return track(resolveCallSite(2, name))
}
