// Package provider defines the LLM provider interface used by offline
// practice mode, where the client generates Socratic replies locally
// instead of talking to the Mukti server.
package provider

import (
	"context"

	"github.com/shettydev/mukti-tui/internal/chat"
)

// Provider generates assistant replies from conversation history.
type Provider interface {
	// Name returns the provider's identifier.
	Name() string

	// Stream sends the conversation history and returns a channel that
	// streams response chunks.
	Stream(ctx context.Context, technique string, history []chat.Message) (<-chan StreamChunk, error)
}

// StreamChunk represents a chunk of streamed response.
type StreamChunk struct {
	Content string
	Done    bool
	Err     error
}
