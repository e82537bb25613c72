//go:build ctrack_disable || ctrack_disable_prod

package ctrack

// TrackProd is a no-op under ctrack_disable or ctrack_disable_prod.
func TrackProd() func() { return noop }

// TrackProdName is a no-op under ctrack_disable or ctrack_disable_prod.
func TrackProdName(name string) func() { return noop }
