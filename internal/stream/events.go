// Package stream delivers typed live events for a conversation: the SSE
// listener that consumes the server's event stream and the bus that fans
// events out to the UI.
package stream

import (
	"time"

	"github.com/shettydev/mukti-tui/internal/chat"
)

// EventType identifies the type of event.
type EventType string

const (
	EventProcessingStarted EventType = "processing_started"
	EventProgress          EventType = "progress"
	EventCompleted         EventType = "completed"
	EventError             EventType = "error"
	EventRateLimited       EventType = "rate_limited"
	EventMessage           EventType = "message"

	// Connection lifecycle, synthesized by the listener itself.
	EventStreamConnected    EventType = "stream_connected"
	EventStreamDisconnected EventType = "stream_disconnected"
)

// Event is one thing that happened on a conversation's live stream.
type Event struct {
	Type           EventType
	ConversationID string
	Data           interface{}
	Timestamp      time.Time
}

// ProcessingData accompanies processing_started and progress events.
type ProcessingData struct {
	Status        string `json:"status"`
	QueuePosition int    `json:"position"`
}

// MessageData accompanies message events.
type MessageData struct {
	Message chat.Message `json:"message"`
}

// ErrorData accompanies error events.
type ErrorData struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// RateLimitData accompanies rate_limited events.
type RateLimitData struct {
	RetryAfterSeconds int `json:"retry_after_seconds"`
}
