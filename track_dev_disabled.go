//go:build ctrack_disable || ctrack_disable_dev

package ctrack

// TrackDev is a no-op under ctrack_disable or ctrack_disable_dev.
func TrackDev() func() { return noop }

// TrackDevName is a no-op under ctrack_disable or ctrack_disable_dev.
func TrackDevName(name string) func() { return noop }
