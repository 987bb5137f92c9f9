package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shettydev/mukti-tui/internal/api"
	"github.com/shettydev/mukti-tui/internal/chat"
	"github.com/shettydev/mukti-tui/internal/constants"
	"github.com/shettydev/mukti-tui/internal/store"
	"github.com/shettydev/mukti-tui/internal/stream"
)

// Remote backs the UI with the Mukti server. Fetched conversations and
// message pages are written through to the local cache, which also serves
// as a fallback when the server is unreachable.
type Remote struct {
	client   *api.Client
	store    *store.Store
	listener *stream.Listener
	bus      *stream.EventBus
	pageSize int
}

// NewRemote creates a server-backed service.
func NewRemote(client *api.Client, st *store.Store, baseURL string, pageSize int) *Remote {
	if pageSize <= 0 {
		pageSize = constants.DefaultArchivePageSize
	}
	bus := stream.NewEventBus(constants.MinEventBusBufferSize)
	return &Remote{
		client:   client,
		store:    st,
		listener: stream.NewListener(baseURL, bus),
		bus:      bus,
		pageSize: pageSize,
	}
}

// Conversations lists from the server, falling back to the cache when the
// server is unreachable.
func (r *Remote) Conversations(ctx context.Context) ([]chat.Conversation, error) {
	convs, err := r.client.Conversations(ctx)
	if err != nil {
		cached, cacheErr := r.store.ListConversations()
		if cacheErr != nil {
			return nil, err
		}
		log.Warn().Err(err).Int("cached", len(cached)).Msg("server unreachable, serving cached conversations")
		return cached, nil
	}

	for _, c := range convs {
		if err := r.store.SaveConversation(c); err != nil {
			log.Warn().Err(err).Str("conversation", c.ID).Msg("cache conversation failed")
		}
	}
	return convs, nil
}

// CreateConversation starts a new dialogue on the server.
func (r *Remote) CreateConversation(ctx context.Context, title, technique string) (chat.Conversation, error) {
	conv, err := r.client.CreateConversation(ctx, title, technique)
	if err != nil {
		return chat.Conversation{}, err
	}
	if err := r.store.SaveConversation(conv); err != nil {
		log.Warn().Err(err).Str("conversation", conv.ID).Msg("cache conversation failed")
	}
	return conv, nil
}

// Recent fetches the server's recent window, falling back to the cache.
func (r *Remote) Recent(ctx context.Context, conversationID string) ([]chat.Message, bool, error) {
	msgs, hasArchived, err := r.client.Recent(ctx, conversationID)
	if err != nil {
		cached, cacheErr := r.store.RecentMessages(conversationID, constants.DefaultRecentWindow)
		if cacheErr != nil || len(cached) == 0 {
			return nil, false, err
		}
		log.Warn().Err(err).Str("conversation", conversationID).Msg("server unreachable, serving cached recent window")
		return cached, false, nil
	}

	if err := r.store.CacheMessages(conversationID, msgs); err != nil {
		log.Warn().Err(err).Str("conversation", conversationID).Msg("cache recent window failed")
	}
	return msgs, hasArchived, nil
}

// ArchivePage fetches one backward page, writing it through to the cache.
func (r *Remote) ArchivePage(ctx context.Context, conversationID string, beforeSequence int64) (chat.ArchivePage, error) {
	page, err := r.client.MessagesBefore(ctx, conversationID, beforeSequence, r.pageSize)
	if err != nil {
		cached, cacheErr := r.store.MessagesBefore(conversationID, beforeSequence, r.pageSize)
		if cacheErr != nil || len(cached.Messages) == 0 {
			return chat.ArchivePage{}, err
		}
		log.Warn().Err(err).Str("conversation", conversationID).Msg("server unreachable, serving cached archive page")
		return cached, nil
	}

	if err := r.store.CacheMessages(conversationID, page.Messages); err != nil {
		log.Warn().Err(err).Str("conversation", conversationID).Msg("cache archive page failed")
	}
	return page, nil
}

// Send submits a user message to the server.
func (r *Remote) Send(ctx context.Context, conversationID, content string) (chat.Ack, error) {
	ack, err := r.client.Send(ctx, conversationID, content)
	if err != nil {
		return chat.Ack{}, err
	}

	if err := r.store.CacheMessages(conversationID, []chat.Message{{
		Sequence:  ack.Sequence,
		Role:      chat.RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}}); err != nil {
		log.Warn().Err(err).Str("conversation", conversationID).Msg("cache sent message failed")
	}
	return ack, nil
}

// Techniques lists the techniques the server supports.
func (r *Remote) Techniques(ctx context.Context) ([]string, error) {
	return r.client.Techniques(ctx)
}

// Attach starts the live event stream for one conversation.
func (r *Remote) Attach(conversationID string) {
	r.listener.Attach(conversationID)
}

// Detach stops the live event stream.
func (r *Remote) Detach() {
	r.listener.Detach()
}

// Bus is where live events arrive.
func (r *Remote) Bus() *stream.EventBus {
	return r.bus
}

// Close detaches the listener and closes the bus.
func (r *Remote) Close() error {
	r.listener.Detach()
	r.bus.Close()
	return nil
}
