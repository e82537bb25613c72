// Package reconstruct turns one goroutine's flat Begin/End event log into
// Pairs: matched begin/end intervals with recursion depth and, for each
// Pair, the set of directly nested child intervals needed later to
// compute active-exclusive time (see internal/interval).
package reconstruct

import (
	"fmt"

	"github.com/Compaile/ctrack/internal/buffer"
)

// Interval is a closed wall-clock span, in nanoseconds since the shared
// clock epoch.
type Interval struct {
	Begin int64
	End   int64
}

// Pair is one matched Begin/End recording of a single Scope execution.
type Pair struct {
	CallSiteID  int
	GoroutineID uint64
	Begin       int64
	End         int64
	// Depth is the number of already-open Pairs for the same CallSiteID
	// on this goroutine at the moment of Begin (0 = outermost).
	Depth int
	// Children holds the intervals of Pairs that began and ended while
	// this Pair was the innermost open Pair on the stack (direct nesting
	// only, not transitive descendants), excluding children that share
	// this Pair's CallSiteID (recursive self-nesting is accounted for by
	// the depth-collapsing union in internal/interval, not subtracted
	// here a second time).
	Children []Interval
}

// Error reports that a goroutine's event stream could not be reconstructed:
// an End with no open Begin, an End that does not match the top of that
// goroutine's open-Begin stack, an End timestamp earlier than its Begin,
// an unknown event kind, or a Begin still open at the end of the stream.
// ctrack.SnapshotAndDrain then discards all of that goroutine's events;
// other goroutines are unaffected.
type Error struct {
	GoroutineID uint64
	Reason      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("goroutine %d: malformed event stream: %s", e.GoroutineID, e.Reason)
}

type openFrame struct {
	callSiteID int
	begin      int64
	depth      int
	children   []Interval
}

// Reconstruct pairs the Begin/End events of a single goroutine's drained
// buffer. On a malformed stream it returns the Pairs recovered before the
// problem was found, plus a non-nil *Error; the error is non-nil exactly
// when a structural problem was found. ctrack.SnapshotAndDrain does not
// use any of the returned Pairs when the error is non-nil.
func Reconstruct(goroutineID uint64, events []buffer.Event) ([]Pair, error) {
	var stack []openFrame
	perSiteDepth := make(map[int]int)
	pairs := make([]Pair, 0, len(events)/2)

	for _, e := range events {
		switch e.Kind {
		case buffer.Begin:
			d := perSiteDepth[e.CallSiteID]
			perSiteDepth[e.CallSiteID] = d + 1
			stack = append(stack, openFrame{
				callSiteID: e.CallSiteID,
				begin:      e.Timestamp,
				depth:      d,
			})

		case buffer.End:
			if len(stack) == 0 {
				return pairs, &Error{GoroutineID: goroutineID, Reason: "end with no open begin"}
			}
			top := stack[len(stack)-1]
			if top.callSiteID != e.CallSiteID {
				return pairs, &Error{GoroutineID: goroutineID, Reason: "end does not match top-of-stack call-site"}
			}
			if e.Timestamp < top.begin {
				return pairs, &Error{GoroutineID: goroutineID, Reason: "end timestamp precedes begin timestamp"}
			}
			stack = stack[:len(stack)-1]
			perSiteDepth[e.CallSiteID]--

			p := Pair{
				CallSiteID:  top.callSiteID,
				GoroutineID: goroutineID,
				Begin:       top.begin,
				End:         e.Timestamp,
				Depth:       top.depth,
				Children:    top.children,
			}
			pairs = append(pairs, p)

			if len(stack) > 0 {
				parent := &stack[len(stack)-1]
				if parent.callSiteID != p.CallSiteID {
					parent.children = append(parent.children, Interval{Begin: p.Begin, End: p.End})
				}
			}

		default:
			return pairs, &Error{GoroutineID: goroutineID, Reason: "unknown event kind"}
		}
	}

	if len(stack) != 0 {
		return pairs, &Error{GoroutineID: goroutineID, Reason: "unclosed begin at end of stream"}
	}
	return pairs, nil
}
