package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shettydev/mukti-tui/internal/constants"
)

// Listener maintains one live SSE connection for the active conversation
// and publishes typed events to the bus. Switching conversations tears down
// the previous connection; reconnects happen with capped backoff while the
// subscription is alive.
type Listener struct {
	baseURL string
	client  *http.Client
	bus     *EventBus

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewListener creates a listener against the given API base URL.
func NewListener(baseURL string, bus *EventBus) *Listener {
	return &Listener{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No client timeout: the event stream is long-lived. Cancellation
		// comes from the per-subscription context.
		client: &http.Client{},
		bus:    bus,
	}
}

// Attach switches the live subscription to the given conversation,
// cancelling any previous one.
func (l *Listener) Attach(conversationID string) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run(ctx, conversationID)
	}()
}

// Detach cancels the current subscription and waits for the stream
// goroutine to stop. No events are published afterwards.
func (l *Listener) Detach() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.mu.Unlock()
	l.wg.Wait()
}

func (l *Listener) run(ctx context.Context, conversationID string) {
	delay := constants.StreamReconnectMinDelay

	for {
		if ctx.Err() != nil {
			return
		}

		err := l.consume(ctx, conversationID)
		if ctx.Err() != nil {
			return
		}

		log.Warn().
			Err(err).
			Str("conversation", conversationID).
			Dur("retry_in", delay).
			Msg("event stream disconnected")
		l.bus.Publish(Event{
			Type:           EventStreamDisconnected,
			ConversationID: conversationID,
			Timestamp:      time.Now(),
		})

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > constants.StreamReconnectMaxDelay {
			delay = constants.StreamReconnectMaxDelay
		}
	}
}

// consume opens the SSE connection and reads frames until the stream ends
// or the context is cancelled.
func (l *Listener) consume(ctx context.Context, conversationID string) error {
	url := fmt.Sprintf("%s/conversations/%s/events", l.baseURL, conversationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open stream: unexpected status %d", resp.StatusCode)
	}

	l.bus.Publish(Event{
		Type:           EventStreamConnected,
		ConversationID: conversationID,
		Timestamp:      time.Now(),
	})

	return l.readFrames(conversationID, resp.Body)
}

// readFrames parses text/event-stream frames: "event:" and "data:" lines
// accumulated until a blank line dispatches the frame.
func (l *Listener) readFrames(conversationID string, body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var eventName string
	var data strings.Builder

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if eventName != "" || data.Len() > 0 {
				l.dispatch(conversationID, eventName, data.String())
			}
			eventName = ""
			data.Reset()

		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))

		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))

		case strings.HasPrefix(line, ":"):
			// Comment/keepalive, ignore
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return io.EOF
}

func (l *Listener) dispatch(conversationID, name, data string) {
	event, ok := parseEvent(conversationID, name, data)
	if !ok {
		log.Debug().
			Str("conversation", conversationID).
			Str("event", name).
			Msg("ignoring unknown stream event")
		return
	}
	l.bus.Publish(event)
}

// parseEvent decodes one SSE frame into a typed event.
func parseEvent(conversationID, name, data string) (Event, bool) {
	event := Event{
		Type:           EventType(name),
		ConversationID: conversationID,
		Timestamp:      time.Now(),
	}

	switch EventType(name) {
	case EventProcessingStarted, EventProgress:
		var d ProcessingData
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			log.Warn().Err(err).Str("event", name).Msg("malformed processing event")
			return Event{}, false
		}
		event.Data = d

	case EventCompleted:
		// No payload

	case EventMessage:
		var d MessageData
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			log.Warn().Err(err).Str("event", name).Msg("malformed message event")
			return Event{}, false
		}
		event.Data = d

	case EventError:
		var d ErrorData
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			log.Warn().Err(err).Str("event", name).Msg("malformed error event")
			return Event{}, false
		}
		event.Data = d

	case EventRateLimited:
		var d RateLimitData
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			log.Warn().Err(err).Str("event", name).Msg("malformed rate-limit event")
			return Event{}, false
		}
		event.Data = d

	default:
		return Event{}, false
	}

	return event, true
}
