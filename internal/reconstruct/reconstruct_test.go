package reconstruct_test

import (
	"testing"

	"github.com/Compaile/ctrack/internal/buffer"
	"github.com/Compaile/ctrack/internal/reconstruct"
)

func TestReconstructSingleCall(t *testing.T) {
	events := []buffer.Event{
		{CallSiteID: 1, Timestamp: 100, Kind: buffer.Begin},
		{CallSiteID: 1, Timestamp: 200, Kind: buffer.End},
	}
	pairs, err := reconstruct.Reconstruct(1, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	p := pairs[0]
	if p.Begin != 100 || p.End != 200 || p.Depth != 0 || len(p.Children) != 0 {
		t.Fatalf("unexpected pair: %+v", p)
	}
}

func TestReconstructTwoSiblingsUnderOneParent(t *testing.T) {
	// P begins, C1 runs fully inside, C2 runs fully inside, P ends.
	const (
		siteP = 1
		siteC = 2
	)
	events := []buffer.Event{
		{CallSiteID: siteP, Timestamp: 0, Kind: buffer.Begin},
		{CallSiteID: siteC, Timestamp: 1, Kind: buffer.Begin},
		{CallSiteID: siteC, Timestamp: 6, Kind: buffer.End}, // C1: 5ns
		{CallSiteID: siteC, Timestamp: 8, Kind: buffer.Begin},
		{CallSiteID: siteC, Timestamp: 11, Kind: buffer.End}, // C2: 3ns
		{CallSiteID: siteP, Timestamp: 12, Kind: buffer.End},
	}
	pairs, err := reconstruct.Reconstruct(1, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(pairs))
	}
	parent := pairs[2]
	if parent.CallSiteID != siteP {
		t.Fatalf("expected the last popped pair to be the parent, got %+v", parent)
	}
	if len(parent.Children) != 2 {
		t.Fatalf("expected parent to have 2 direct children, got %d", len(parent.Children))
	}
}

func TestReconstructRecursion(t *testing.T) {
	const site = 1
	events := []buffer.Event{
		{CallSiteID: site, Timestamp: 0, Kind: buffer.Begin},
		{CallSiteID: site, Timestamp: 1, Kind: buffer.Begin},
		{CallSiteID: site, Timestamp: 2, Kind: buffer.Begin},
		{CallSiteID: site, Timestamp: 3, Kind: buffer.End},
		{CallSiteID: site, Timestamp: 4, Kind: buffer.End},
		{CallSiteID: site, Timestamp: 5, Kind: buffer.End},
	}
	pairs, err := reconstruct.Reconstruct(1, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(pairs))
	}
	// Popped innermost-first: depths 2, 1, 0.
	wantDepths := []int{2, 1, 0}
	for i, p := range pairs {
		if p.Depth != wantDepths[i] {
			t.Fatalf("pair %d depth = %d, want %d", i, p.Depth, wantDepths[i])
		}
		// A same-site recursive child is not recorded in Children: the
		// active-interval merge in internal/interval collapses recursion
		// on its own, so double-subtracting here would be wrong.
		if len(p.Children) != 0 {
			t.Fatalf("pair %d has %d children, want 0 for same-site recursion", i, len(p.Children))
		}
	}
}

func TestReconstructMismatchedEndIsReported(t *testing.T) {
	events := []buffer.Event{
		{CallSiteID: 1, Timestamp: 0, Kind: buffer.Begin},
		{CallSiteID: 2, Timestamp: 1, Kind: buffer.End},
	}
	_, err := reconstruct.Reconstruct(1, events)
	if err == nil {
		t.Fatalf("expected an error for a mismatched End")
	}
}

func TestReconstructUnclosedBeginIsReported(t *testing.T) {
	events := []buffer.Event{
		{CallSiteID: 1, Timestamp: 0, Kind: buffer.Begin},
	}
	_, err := reconstruct.Reconstruct(1, events)
	if err == nil {
		t.Fatalf("expected an error for an unclosed Begin")
	}
}

func TestReconstructEndBeforeBeginIsReported(t *testing.T) {
	events := []buffer.Event{
		{CallSiteID: 1, Timestamp: 10, Kind: buffer.Begin},
		{CallSiteID: 1, Timestamp: 5, Kind: buffer.End},
	}
	_, err := reconstruct.Reconstruct(1, events)
	if err == nil {
		t.Fatalf("expected an error for an End preceding its Begin")
	}
}
