package chat

// Geometry is an opaque snapshot of a scrollable viewport: current scroll
// offset, viewport height, and total content height. Units are whatever the
// host UI measures in (terminal lines here); the tracker only compares them.
type Geometry struct {
	Offset   int
	Viewport int
	Content  int
}

// DistanceFromBottom is how much content lies below the visible region.
func (g Geometry) DistanceFromBottom() int {
	d := g.Content - g.Offset - g.Viewport
	if d < 0 {
		return 0
	}
	return d
}

// AtBottom reports whether the viewport is within threshold of the end.
func (g Geometry) AtBottom(threshold int) bool {
	return g.DistanceFromBottom() <= threshold
}

// Decision is the outcome of one arrival-batching window.
type Decision int

const (
	// DecisionNone: stale or empty window, do nothing.
	DecisionNone Decision = iota
	// DecisionScrollSmooth: the reader was at the bottom when the window
	// opened; scroll to the appended end with animation.
	DecisionScrollSmooth
	// DecisionShowPending: the reader was scrolled away; leave their
	// position alone and surface the new-messages affordance.
	DecisionShowPending
)

// Tracker owns the auto-scroll contract for one conversation view: it
// tracks whether the reader is at the bottom, batches rapid message
// arrivals into one scroll decision per window, and manages the
// pending-new-messages flag.
//
// The tracker holds no timer itself. The host opens a window via
// NoteArrival, schedules a wakeup after the batching interval, and calls
// Flush with the returned generation. Generations make stale wakeups
// harmless: a flush for a superseded window yields DecisionNone.
type Tracker struct {
	threshold int

	atBottom bool
	pending  bool

	windowOpen     bool
	windowAtBottom bool
	gen            int
}

// NewTracker creates a tracker. A fresh view starts at the bottom (mount
// performs an instant jump there before any arrivals are observed).
func NewTracker(threshold int) *Tracker {
	return &Tracker{
		threshold: threshold,
		atBottom:  true,
	}
}

// Observe records the viewport geometry after a scroll or resize. It
// returns true when the reader just caught up: transitioning into the
// bottom region while messages were pending clears the affordance and
// re-arms auto-scroll. Leaving the bottom never retroactively sets the
// flag; only new arrivals do.
func (t *Tracker) Observe(g Geometry) bool {
	t.atBottom = g.AtBottom(t.threshold)
	if t.atBottom && t.pending {
		t.pending = false
		return true
	}
	return false
}

// AtBottom reports the last observed at-bottom state.
func (t *Tracker) AtBottom() bool {
	return t.atBottom
}

// Pending reports whether unseen messages exist below the reader.
func (t *Tracker) Pending() bool {
	return t.pending
}

// NoteArrival records that new messages arrived. If no batching window is
// open it opens one, capturing the at-bottom state as of the window start,
// and returns (true, generation): the host should schedule a Flush after
// the batching interval. Arrivals during an open window coalesce into it
// and return (false, generation).
func (t *Tracker) NoteArrival() (opened bool, gen int) {
	if t.windowOpen {
		return false, t.gen
	}
	t.gen++
	t.windowOpen = true
	t.windowAtBottom = t.atBottom
	return true, t.gen
}

// Flush closes the batching window identified by gen and returns the
// single scroll decision for everything that arrived inside it.
func (t *Tracker) Flush(gen int) Decision {
	if !t.windowOpen || gen != t.gen {
		return DecisionNone
	}
	t.windowOpen = false

	if t.windowAtBottom {
		t.pending = false
		return DecisionScrollSmooth
	}
	t.pending = true
	return DecisionShowPending
}

// JumpedToBottom records a programmatic scroll to the end (mount jump,
// smooth auto-scroll, or the affordance being activated).
func (t *Tracker) JumpedToBottom() {
	t.atBottom = true
	t.pending = false
}
