// Package session provides the conversation service behind the UI. Remote
// talks to the Mukti server and mirrors responses into the local cache;
// Local runs entirely offline against a configured LLM provider. Both
// deliver live events through the same bus, so the UI cannot tell them
// apart.
package session

import (
	"context"

	"github.com/shettydev/mukti-tui/internal/chat"
	"github.com/shettydev/mukti-tui/internal/stream"
)

// Service is everything the UI needs from a conversation backend.
type Service interface {
	// Conversations lists the reader's conversations, most recently
	// active first.
	Conversations(ctx context.Context) ([]chat.Conversation, error)

	// CreateConversation starts a new dialogue with the given technique.
	CreateConversation(ctx context.Context, title, technique string) (chat.Conversation, error)

	// Recent returns the bounded recent window for a conversation and
	// whether older archived messages exist beyond it.
	Recent(ctx context.Context, conversationID string) ([]chat.Message, bool, error)

	// ArchivePage returns one backward page of messages strictly older
	// than beforeSequence.
	ArchivePage(ctx context.Context, conversationID string, beforeSequence int64) (chat.ArchivePage, error)

	// Send submits a user message. The reply arrives later as events on
	// the bus.
	Send(ctx context.Context, conversationID, content string) (chat.Ack, error)

	// Techniques lists the available Socratic techniques.
	Techniques(ctx context.Context) ([]string, error)

	// Attach starts live event delivery for one conversation, replacing
	// any previous attachment. Detach stops it.
	Attach(conversationID string)
	Detach()

	// Bus is where live events arrive.
	Bus() *stream.EventBus

	// Close releases the service's resources.
	Close() error
}
