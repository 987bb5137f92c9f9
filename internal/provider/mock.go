package provider

import (
	"context"

	"github.com/shettydev/mukti-tui/internal/chat"
)

// MockProvider is a test provider that returns predefined responses.
type MockProvider struct {
	name      string
	response  string
	streamErr error
	chunkErr  error
}

// NewMock creates a new mock provider.
func NewMock(name, response string) *MockProvider {
	return &MockProvider{
		name:     name,
		response: response,
	}
}

// WithStreamError sets an error to return from Stream.
func (p *MockProvider) WithStreamError(err error) *MockProvider {
	p.streamErr = err
	return p
}

// WithChunkError sets an error to deliver mid-stream instead of Done.
func (p *MockProvider) WithChunkError(err error) *MockProvider {
	p.chunkErr = err
	return p
}

// Name returns the provider identifier.
func (p *MockProvider) Name() string {
	return p.name
}

// Stream returns the predefined response as a single chunk.
func (p *MockProvider) Stream(ctx context.Context, technique string, history []chat.Message) (<-chan StreamChunk, error) {
	if p.streamErr != nil {
		return nil, p.streamErr
	}

	ch := make(chan StreamChunk, 2)
	go func() {
		defer close(ch)
		ch <- StreamChunk{Content: p.response}
		if p.chunkErr != nil {
			ch <- StreamChunk{Err: p.chunkErr}
			return
		}
		ch <- StreamChunk{Done: true}
	}()

	return ch, nil
}
