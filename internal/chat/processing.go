package chat

import (
	"time"

	"github.com/shettydev/mukti-tui/internal/constants"
)

// Processing mirrors the in-flight assistant response for one conversation.
// It is transient UI state fed by stream events, not a persisted message:
// the view renders it as a synthetic loading entry at the end of the merged
// list, without a sequence.
type Processing struct {
	active        bool
	status        string
	queuePosition int
	startedAt     time.Time
}

// Start marks processing active. The elapsed clock resets only on the
// inactive-to-active transition; repeated start events while already active
// just refresh the status.
func (p *Processing) Start(status string, queuePosition int, now time.Time) {
	if !p.active {
		p.active = true
		p.startedAt = now
	}
	p.set(status, queuePosition)
}

// Update refreshes status text and queue position from a progress event.
func (p *Processing) Update(status string, queuePosition int) {
	if !p.active {
		return
	}
	p.set(status, queuePosition)
}

func (p *Processing) set(status string, queuePosition int) {
	if status != "" {
		p.status = status
	} else if p.status == "" {
		p.status = constants.StatusThinkingFallback
	}
	p.queuePosition = queuePosition
}

// Stop clears the processing state.
func (p *Processing) Stop() {
	*p = Processing{}
}

// Active reports whether a response is in flight.
func (p *Processing) Active() bool {
	return p.active
}

// QueuePosition returns the server-reported queue position, 0 when absent.
func (p *Processing) QueuePosition() int {
	return p.queuePosition
}

// Elapsed returns how long the current response has been in flight.
func (p *Processing) Elapsed(now time.Time) time.Duration {
	if !p.active {
		return 0
	}
	return now.Sub(p.startedAt)
}

// DisplayStatus returns the status text to show, escalating with elapsed
// time: the original status first, a generic still-working message after
// the soft threshold, and an extended message past the hard threshold.
func (p *Processing) DisplayStatus(now time.Time) string {
	if !p.active {
		return ""
	}
	elapsed := p.Elapsed(now)
	switch {
	case elapsed >= constants.ProcessingHardThreshold:
		return constants.StatusTakingLong
	case elapsed >= constants.ProcessingSoftThreshold:
		return constants.StatusStillWorking
	default:
		return p.status
	}
}
