package chat

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// Ledger accumulates messages from the three sources feeding a conversation
// view: backward-paginated archive pages, the server's recent window, and
// live stream-delivered messages. It produces a single duplicate-free view
// ascending by sequence.
//
// The merged view is derived, recomputed state: Merged re-sorts the full
// combined set on every call rather than maintaining an incremental
// structure. Message volume per conversation is bounded by pagination, so
// the full re-sort stays cheap and keeps the ledger trivially correct under
// out-of-order delivery.
type Ledger struct {
	conversationID string
	pages          [][]Message
	pageCursors    map[int64]bool // oldest sequence per fetched page
	recent         []Message
	live           []Message
	warned         map[int64]bool // duplicate sequences already logged
}

// NewLedger creates an empty ledger for one conversation.
func NewLedger(conversationID string) *Ledger {
	return &Ledger{
		conversationID: conversationID,
		pageCursors:    make(map[int64]bool),
		warned:         make(map[int64]bool),
	}
}

// ConversationID returns the conversation this ledger belongs to.
func (l *Ledger) ConversationID() string {
	return l.conversationID
}

// SetRecent replaces the recent-messages window.
func (l *Ledger) SetRecent(msgs []Message) {
	l.recent = append([]Message(nil), msgs...)
}

// AppendLive adds one stream-delivered message.
func (l *Ledger) AppendLive(m Message) {
	l.live = append(l.live, m)
}

// AddArchivePage records one fetched archive page. Adding the same page
// twice (keyed by its oldest sequence) is a no-op, so re-fetches caused by
// re-renders cannot duplicate entries. Pages are never evicted during a
// session.
func (l *Ledger) AddArchivePage(page []Message) {
	if len(page) == 0 {
		return
	}
	key := page[0].Sequence
	if l.pageCursors[key] {
		return
	}
	l.pageCursors[key] = true
	l.pages = append(l.pages, append([]Message(nil), page...))
}

// OldestSequence returns the smallest sequence currently held and whether
// the ledger has any messages. It is the beforeSequence cursor for the next
// backward archive fetch.
func (l *Ledger) OldestSequence() (int64, bool) {
	merged := l.Merged()
	if len(merged) == 0 {
		return 0, false
	}
	return merged[0].Sequence, true
}

// Len returns the number of distinct messages held.
func (l *Ledger) Len() int {
	return len(l.Merged())
}

// Merged returns all held messages sorted ascending by sequence with
// duplicates removed. A duplicate sequence is a data-integrity anomaly
// (the server assigns sequences uniquely); it is logged and the first
// occurrence kept rather than double-rendered or surfaced to the reader.
func (l *Ledger) Merged() []Message {
	total := len(l.recent) + len(l.live)
	for _, p := range l.pages {
		total += len(p)
	}
	if total == 0 {
		return nil
	}

	combined := make([]Message, 0, total)
	for _, p := range l.pages {
		combined = append(combined, p...)
	}
	combined = append(combined, l.recent...)
	combined = append(combined, l.live...)

	// Stable sort preserves source order among equal sequences so
	// keep-first dedup is deterministic.
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Sequence < combined[j].Sequence
	})

	out := combined[:0]
	var prev int64
	for i, m := range combined {
		if i > 0 && m.Sequence == prev {
			// Merged runs on every render; warn once per sequence so a
			// persistent duplicate does not flood the log.
			if !l.warned[m.Sequence] {
				l.warned[m.Sequence] = true
				log.Warn().
					Str("conversation", l.conversationID).
					Int64("sequence", m.Sequence).
					Msg("duplicate message sequence, keeping first occurrence")
			}
			continue
		}
		out = append(out, m)
		prev = m.Sequence
	}

	return out
}
