// Package chat holds the conversation data model and the reconciler that
// merges archived, recent, and live-streamed messages into one ordered view.
package chat

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single dialogue turn. Messages are immutable once created;
// the ordering key is Sequence, a server-assigned monotonic integer unique
// within a conversation. Timestamps may collide or be skewed and are never
// used for ordering.
type Message struct {
	Sequence  int64     `json:"sequence"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Tokens    int       `json:"tokens,omitempty"`
}

// Conversation is one Socratic dialogue.
type Conversation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Technique   string    `json:"technique"`
	HasArchived bool      `json:"has_archived_messages"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ArchivePage is one backward page of messages older than the recent
// window. Messages within a page are ascending by sequence.
type ArchivePage struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"has_more"`
}

// Ack acknowledges an accepted send.
type Ack struct {
	Sequence int64  `json:"sequence"`
	JobID    string `json:"job_id"`
}
