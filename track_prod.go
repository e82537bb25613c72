//go:build !ctrack_disable && !ctrack_disable_prod

package ctrack

// TrackProd is Track, but belongs to the production enablement group:
// it compiles to a real no-op when the ctrack_disable_prod build tag is
// set, independently of the development group.
func TrackProd() func() {
	return track(resolveCallSite(2, ""))
}

// TrackProdName is TrackName, in the production enablement group.
func TrackProdName(name string) func() {
	return track(resolveCallSite(2, name))
}
