//go:build !ctrack_disable && !ctrack_disable_dev

package ctrack

// TrackDev is Track, but belongs to the development enablement group:
// it compiles to a real no-op (not merely a disabled runtime check) when
// the ctrack_disable_dev build tag is set.
func TrackDev() func() {
	return track(resolveCallSite(2, ""))
}

// TrackDevName is TrackName, in the development enablement group.
func TrackDevName(name string) func() {
	return track(resolveCallSite(2, name))
}
