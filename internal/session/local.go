package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shettydev/mukti-tui/internal/chat"
	"github.com/shettydev/mukti-tui/internal/constants"
	"github.com/shettydev/mukti-tui/internal/provider"
	"github.com/shettydev/mukti-tui/internal/store"
	"github.com/shettydev/mukti-tui/internal/stream"
)

// ErrTurnInProgress is returned by Send while a previous turn is still
// generating.
var ErrTurnInProgress = errors.New("session: a turn is already in progress")

// Local runs conversations entirely offline: messages persist in the
// local store and replies come from a configured LLM provider. Events
// flow through the same bus the remote listener would use, so the UI is
// oblivious to the difference.
type Local struct {
	store    *store.Store
	provider provider.Provider
	bus      *stream.EventBus
	pageSize int

	mu   sync.Mutex
	busy bool
	wg   sync.WaitGroup
}

// NewLocal creates an offline service.
func NewLocal(st *store.Store, p provider.Provider, pageSize int) *Local {
	if pageSize <= 0 {
		pageSize = constants.DefaultArchivePageSize
	}
	return &Local{
		store:    st,
		provider: p,
		bus:      stream.NewEventBus(constants.MinEventBusBufferSize),
		pageSize: pageSize,
	}
}

// Conversations lists the locally stored conversations.
func (l *Local) Conversations(ctx context.Context) ([]chat.Conversation, error) {
	return l.store.ListConversations()
}

// CreateConversation starts a new local dialogue.
func (l *Local) CreateConversation(ctx context.Context, title, technique string) (chat.Conversation, error) {
	conv := chat.Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		Technique: technique,
		UpdatedAt: time.Now().UTC(),
	}
	if err := l.store.SaveConversation(conv); err != nil {
		return chat.Conversation{}, fmt.Errorf("create local conversation: %w", err)
	}
	return conv, nil
}

// Recent returns the tail of the local history. HasArchived mirrors the
// server contract: true when messages exist beyond the window.
func (l *Local) Recent(ctx context.Context, conversationID string) ([]chat.Message, bool, error) {
	msgs, err := l.store.RecentMessages(conversationID, constants.DefaultRecentWindow)
	if err != nil {
		return nil, false, err
	}

	total, err := l.store.CountMessages(conversationID)
	if err != nil {
		return nil, false, err
	}
	return msgs, total > len(msgs), nil
}

// ArchivePage returns one backward page from the local history.
func (l *Local) ArchivePage(ctx context.Context, conversationID string, beforeSequence int64) (chat.ArchivePage, error) {
	return l.store.MessagesBefore(conversationID, beforeSequence, l.pageSize)
}

// Send persists the user message, then generates the assistant reply in
// the background. The reply arrives as bus events: processing_started,
// then message and completed, or error.
func (l *Local) Send(ctx context.Context, conversationID, content string) (chat.Ack, error) {
	l.mu.Lock()
	if l.busy {
		l.mu.Unlock()
		return chat.Ack{}, ErrTurnInProgress
	}
	l.busy = true
	l.mu.Unlock()

	seq, err := l.store.NextSequence(conversationID)
	if err != nil {
		l.setIdle()
		return chat.Ack{}, err
	}

	userMsg := chat.Message{
		Sequence:  seq,
		Role:      chat.RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := l.store.CacheMessages(conversationID, []chat.Message{userMsg}); err != nil {
		l.setIdle()
		return chat.Ack{}, fmt.Errorf("persist user message: %w", err)
	}
	l.touchConversation(conversationID)

	l.wg.Add(1)
	go l.generate(conversationID)

	return chat.Ack{Sequence: seq, JobID: uuid.NewString()}, nil
}

// generate runs one assistant turn and publishes its lifecycle events.
func (l *Local) generate(conversationID string) {
	defer l.wg.Done()
	defer l.setIdle()

	ctx, cancel := context.WithTimeout(context.Background(), constants.ProviderRequestTimeout)
	defer cancel()

	l.publish(stream.EventProcessingStarted, conversationID, stream.ProcessingData{
		Status: constants.StatusThinkingFallback,
	})

	conv, err := l.store.GetConversation(conversationID)
	if err != nil {
		l.fail(conversationID, err)
		return
	}

	history, err := l.store.RecentMessages(conversationID, constants.DefaultRecentWindow)
	if err != nil {
		l.fail(conversationID, err)
		return
	}

	ch, err := l.provider.Stream(ctx, conv.Technique, history)
	if err != nil {
		l.fail(conversationID, err)
		return
	}

	var reply string
	for chunk := range ch {
		if chunk.Err != nil {
			l.fail(conversationID, chunk.Err)
			return
		}
		if chunk.Done {
			break
		}
		reply += chunk.Content
	}

	seq, err := l.store.NextSequence(conversationID)
	if err != nil {
		l.fail(conversationID, err)
		return
	}

	msg := chat.Message{
		Sequence:  seq,
		Role:      chat.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	}
	if err := l.store.CacheMessages(conversationID, []chat.Message{msg}); err != nil {
		l.fail(conversationID, err)
		return
	}
	l.touchConversation(conversationID)

	l.publish(stream.EventMessage, conversationID, stream.MessageData{Message: msg})
	l.publish(stream.EventCompleted, conversationID, nil)
}

func (l *Local) fail(conversationID string, err error) {
	log.Error().Err(err).Str("conversation", conversationID).Msg("local turn failed")
	l.publish(stream.EventError, conversationID, stream.ErrorData{
		Message: err.Error(),
		Type:    "provider_error",
	})
}

func (l *Local) publish(t stream.EventType, conversationID string, data interface{}) {
	l.bus.Publish(stream.Event{
		Type:           t,
		ConversationID: conversationID,
		Data:           data,
		Timestamp:      time.Now().UTC(),
	})
}

func (l *Local) setIdle() {
	l.mu.Lock()
	l.busy = false
	l.mu.Unlock()
}

func (l *Local) touchConversation(conversationID string) {
	conv, err := l.store.GetConversation(conversationID)
	if err != nil {
		return
	}
	conv.UpdatedAt = time.Now().UTC()
	if err := l.store.SaveConversation(conv); err != nil {
		log.Warn().Err(err).Str("conversation", conversationID).Msg("touch conversation failed")
	}
}

// Techniques returns the built-in technique list.
func (l *Local) Techniques(ctx context.Context) ([]string, error) {
	return append([]string(nil), constants.Techniques...), nil
}

// Attach is a no-op offline; there is no stream to open.
func (l *Local) Attach(conversationID string) {}

// Detach is a no-op offline.
func (l *Local) Detach() {}

// Bus is where turn lifecycle events arrive.
func (l *Local) Bus() *stream.EventBus {
	return l.bus
}

// Close waits for any in-flight turn and closes the bus.
func (l *Local) Close() error {
	l.wg.Wait()
	l.bus.Close()
	return nil
}
