package chat

import "testing"

// Geometry helpers use pixel-scale numbers to exercise the unit-agnostic
// contract; the TUI feeds line counts through the same code path.

func TestDistanceFromBottom(t *testing.T) {
	g := Geometry{Offset: 300, Viewport: 200, Content: 1000}
	if d := g.DistanceFromBottom(); d != 500 {
		t.Errorf("expected distance 500, got %d", d)
	}

	// Over-scrolled geometry clamps to zero
	g = Geometry{Offset: 900, Viewport: 200, Content: 1000}
	if d := g.DistanceFromBottom(); d != 0 {
		t.Errorf("expected clamped distance 0, got %d", d)
	}
}

func TestAtBottomThreshold(t *testing.T) {
	cases := []struct {
		name     string
		distance int
		want     bool
	}{
		{"exactly at end", 0, true},
		{"within threshold", 100, true},
		{"just past threshold", 101, false},
		{"far away", 500, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := Geometry{Offset: 1000 - 200 - tc.distance, Viewport: 200, Content: 1000}
			if got := g.AtBottom(100); got != tc.want {
				t.Errorf("distance %d: expected atBottom=%v, got %v", tc.distance, tc.want, got)
			}
		})
	}
}

func TestArrivalAtBottomScrolls(t *testing.T) {
	// Reader at bottom, several messages arrive within one window:
	// exactly one smooth scroll, no affordance.
	tr := NewTracker(100)
	tr.Observe(Geometry{Offset: 800, Viewport: 200, Content: 1000})

	opened, gen := tr.NoteArrival()
	if !opened {
		t.Fatal("first arrival should open a batching window")
	}
	for i := 0; i < 5; i++ {
		if again, _ := tr.NoteArrival(); again {
			t.Fatal("arrivals during an open window must coalesce")
		}
	}

	if d := tr.Flush(gen); d != DecisionScrollSmooth {
		t.Errorf("expected DecisionScrollSmooth, got %v", d)
	}
	if tr.Pending() {
		t.Error("pending flag must stay clear after auto-scroll")
	}

	// The window is closed; a stale wakeup does nothing.
	if d := tr.Flush(gen); d != DecisionNone {
		t.Errorf("expected DecisionNone on second flush, got %v", d)
	}
}

func TestArrivalAwayFromBottomShowsAffordance(t *testing.T) {
	// Reader 500 units from bottom, messages arrive: position untouched,
	// new-messages affordance appears.
	tr := NewTracker(100)
	tr.Observe(Geometry{Offset: 300, Viewport: 200, Content: 1000})

	_, gen := tr.NoteArrival()
	if d := tr.Flush(gen); d != DecisionShowPending {
		t.Errorf("expected DecisionShowPending, got %v", d)
	}
	if !tr.Pending() {
		t.Error("pending flag should be set")
	}
}

func TestCatchUpClearsPendingAndRearms(t *testing.T) {
	// scroll-up, arrive, scroll-to-bottom, arrive: auto-scroll resumes
	// only after the reader is detected at bottom, and the affordance
	// clears exactly at that detection.
	tr := NewTracker(100)

	// Phase 1: reader scrolls away
	tr.Observe(Geometry{Offset: 100, Viewport: 200, Content: 1000})

	// Phase 2: messages arrive
	_, gen := tr.NoteArrival()
	if d := tr.Flush(gen); d != DecisionShowPending {
		t.Fatalf("expected DecisionShowPending, got %v", d)
	}

	// Phase 3: reader scrolls back down
	caughtUp := tr.Observe(Geometry{Offset: 850, Viewport: 200, Content: 1050})
	if !caughtUp {
		t.Error("returning to bottom with pending messages should report catch-up")
	}
	if tr.Pending() {
		t.Error("pending flag must clear on catch-up")
	}

	// Phase 4: next arrivals auto-scroll again
	_, gen = tr.NoteArrival()
	if d := tr.Flush(gen); d != DecisionScrollSmooth {
		t.Errorf("expected auto-scroll to resume, got %v", d)
	}
}

func TestLeavingBottomDoesNotSetPending(t *testing.T) {
	tr := NewTracker(100)
	tr.Observe(Geometry{Offset: 800, Viewport: 200, Content: 1000})
	tr.Observe(Geometry{Offset: 100, Viewport: 200, Content: 1000})

	if tr.Pending() {
		t.Error("scrolling away without new arrivals must not set pending")
	}
}

func TestWindowCapturesAtBottomAtStart(t *testing.T) {
	// The decision uses at-bottom as of the window start, not flush time.
	tr := NewTracker(100)
	tr.Observe(Geometry{Offset: 800, Viewport: 200, Content: 1000})

	_, gen := tr.NoteArrival()

	// Reader scrolls away mid-window
	tr.Observe(Geometry{Offset: 100, Viewport: 200, Content: 1000})

	if d := tr.Flush(gen); d != DecisionScrollSmooth {
		t.Errorf("expected decision from window start state, got %v", d)
	}
}

func TestStaleGenerationIgnored(t *testing.T) {
	tr := NewTracker(100)
	tr.Observe(Geometry{Offset: 100, Viewport: 200, Content: 1000})

	_, oldGen := tr.NoteArrival()
	if d := tr.Flush(oldGen); d != DecisionShowPending {
		t.Fatalf("expected DecisionShowPending, got %v", d)
	}

	_, newGen := tr.NoteArrival()
	if oldGen == newGen {
		t.Fatal("generations must advance per window")
	}
	if d := tr.Flush(oldGen); d != DecisionNone {
		t.Errorf("stale generation must flush to DecisionNone, got %v", d)
	}
	if d := tr.Flush(newGen); d != DecisionShowPending {
		t.Errorf("current generation should still flush, got %v", d)
	}
}

func TestJumpedToBottom(t *testing.T) {
	// Reader clicks the affordance: jump fires, affordance disappears.
	tr := NewTracker(100)
	tr.Observe(Geometry{Offset: 100, Viewport: 200, Content: 1000})
	_, gen := tr.NoteArrival()
	tr.Flush(gen)

	tr.JumpedToBottom()
	if tr.Pending() {
		t.Error("pending must clear after jumping to bottom")
	}
	if !tr.AtBottom() {
		t.Error("tracker should report at bottom after jump")
	}
}

func TestRepeatedBatchesAtBottomAlwaysEndAtBottom(t *testing.T) {
	// Arbitrary batch sizes and counts while the reader stays at the
	// bottom: every window ends in a scroll decision, never pending.
	tr := NewTracker(100)
	tr.Observe(Geometry{Offset: 800, Viewport: 200, Content: 1000})

	for _, batch := range []int{1, 3, 8, 2, 5} {
		var gen int
		for i := 0; i < batch; i++ {
			_, gen = tr.NoteArrival()
		}
		if d := tr.Flush(gen); d != DecisionScrollSmooth {
			t.Fatalf("batch of %d: expected DecisionScrollSmooth, got %v", batch, d)
		}
		tr.JumpedToBottom()
		if tr.Pending() {
			t.Fatalf("batch of %d: pending flag leaked", batch)
		}
	}
}
