package chat

import (
	"testing"
	"time"

	"github.com/shettydev/mukti-tui/internal/constants"
)

func TestProcessingStatusEscalation(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var p Processing
	p.Start("AI is thinking...", 0, start)

	cases := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, "AI is thinking..."},
		{3 * time.Second, "AI is thinking..."},
		{6 * time.Second, constants.StatusStillWorking},
		{11 * time.Second, constants.StatusTakingLong},
	}

	for _, tc := range cases {
		if got := p.DisplayStatus(start.Add(tc.elapsed)); got != tc.want {
			t.Errorf("at %v: expected %q, got %q", tc.elapsed, tc.want, got)
		}
	}
}

func TestProcessingClockResetsOnlyOnActivation(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var p Processing
	p.Start("working", 0, start)

	// A repeated start while active must not reset the clock.
	p.Start("working", 0, start.Add(8*time.Second))
	if got := p.DisplayStatus(start.Add(8 * time.Second)); got != constants.StatusStillWorking {
		t.Errorf("expected escalated status after repeated start, got %q", got)
	}

	// Stop then start again: clock resets.
	p.Stop()
	restart := start.Add(20 * time.Second)
	p.Start("working", 0, restart)
	if got := p.Elapsed(restart.Add(time.Second)); got != time.Second {
		t.Errorf("expected elapsed 1s after restart, got %v", got)
	}
	if got := p.DisplayStatus(restart.Add(time.Second)); got != "working" {
		t.Errorf("expected original status after restart, got %q", got)
	}
}

func TestProcessingFallbackStatus(t *testing.T) {
	var p Processing
	p.Start("", 0, time.Now())

	if got := p.DisplayStatus(time.Now()); got != constants.StatusThinkingFallback {
		t.Errorf("expected fallback status, got %q", got)
	}
}

func TestProcessingQueuePosition(t *testing.T) {
	var p Processing
	p.Start("queued", 3, time.Now())

	if p.QueuePosition() != 3 {
		t.Errorf("expected queue position 3, got %d", p.QueuePosition())
	}

	p.Update("running", 0)
	if p.QueuePosition() != 0 {
		t.Errorf("expected queue position cleared, got %d", p.QueuePosition())
	}
}

func TestProcessingInactive(t *testing.T) {
	var p Processing

	if p.Active() {
		t.Error("zero value must be inactive")
	}
	if got := p.DisplayStatus(time.Now()); got != "" {
		t.Errorf("inactive processing should display nothing, got %q", got)
	}
	if got := p.Elapsed(time.Now()); got != 0 {
		t.Errorf("inactive processing should report zero elapsed, got %v", got)
	}

	// Update before Start is ignored.
	p.Update("ghost", 1)
	if p.Active() {
		t.Error("update must not activate processing")
	}
}
