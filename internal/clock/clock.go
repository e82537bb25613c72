// Package clock provides the monotonic, nanosecond-resolution timestamp
// source shared by every recording goroutine.
package clock

import (
	"sync/atomic"
	"time"
)

// epoch anchors all timestamps returned by Now; it is read once at
// package init so every subsequent reading is a cheap monotonic
// subtraction rather than a wall-clock read. Now and Reset run on
// different goroutines, so the epoch is an atomic pointer rather than a
// plain package-level time.Time.
var epoch atomic.Pointer[time.Time]

func init() {
	t := time.Now()
	epoch.Store(&t)
}

// Now returns the number of nanoseconds elapsed since the last Reset (or
// process start), using the runtime's monotonic clock reading: time.Since
// keeps using the monotonic component of its argument even if the wall
// clock is adjusted concurrently.
func Now() int64 {
	return int64(time.Since(*epoch.Load()))
}

// StartTime returns the instant Now's zero point corresponds to.
func StartTime() time.Time {
	return *epoch.Load()
}

// Reset rebases the epoch to the current instant, so later Now readings
// count from here. Neither the recording path nor a drain calls it, and
// timestamps read before a Reset are not comparable with ones read after.
func Reset() {
	t := time.Now()
	epoch.Store(&t)
}
