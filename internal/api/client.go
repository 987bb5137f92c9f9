// Package api is the REST client for the Mukti backend: conversations,
// message pages, and sends. The live event stream lives in package stream.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/shettydev/mukti-tui/internal/chat"
	"github.com/shettydev/mukti-tui/internal/constants"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// RateLimitError is a 429 response. RetryAfter may be zero when the server
// sent no hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("api: rate limited, retry after %s", e.RetryAfter)
}

// Client talks to the Mukti REST API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client for the given base URL. Mutating calls are
// paced by the limiter so a retry-happy reader cannot hammer the backend.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: constants.APIRequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(2), 3),
	}
}

// Conversations lists the reader's conversations, most recently active first.
func (c *Client) Conversations(ctx context.Context) ([]chat.Conversation, error) {
	var out []chat.Conversation
	if err := c.get(ctx, "/conversations", &out); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return out, nil
}

// CreateConversation starts a new dialogue with the given technique.
func (c *Client) CreateConversation(ctx context.Context, title, technique string) (chat.Conversation, error) {
	body := struct {
		Title     string `json:"title"`
		Technique string `json:"technique"`
	}{Title: title, Technique: technique}

	var out chat.Conversation
	if err := c.post(ctx, "/conversations", body, &out); err != nil {
		return chat.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return out, nil
}

// recentResponse is the server's recent-window envelope.
type recentResponse struct {
	Messages    []chat.Message `json:"messages"`
	HasArchived bool           `json:"has_archived_messages"`
}

// Recent fetches the server-bounded recent window for a conversation and
// whether older archived messages exist beyond it.
func (c *Client) Recent(ctx context.Context, conversationID string) ([]chat.Message, bool, error) {
	var out recentResponse
	path := fmt.Sprintf("/conversations/%s/messages/recent", url.PathEscape(conversationID))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, false, fmt.Errorf("recent messages: %w", err)
	}
	return out.Messages, out.HasArchived, nil
}

// MessagesBefore fetches one backward archive page: messages strictly older
// than beforeSequence, ascending within the page.
func (c *Client) MessagesBefore(ctx context.Context, conversationID string, beforeSequence int64, limit int) (chat.ArchivePage, error) {
	q := url.Values{}
	q.Set("before", strconv.FormatInt(beforeSequence, 10))
	q.Set("limit", strconv.Itoa(limit))
	path := fmt.Sprintf("/conversations/%s/messages?%s", url.PathEscape(conversationID), q.Encode())

	var out chat.ArchivePage
	if err := c.get(ctx, path, &out); err != nil {
		return chat.ArchivePage{}, fmt.Errorf("archive page: %w", err)
	}
	return out, nil
}

// Send submits a user message. The idempotency key lets the server drop a
// duplicate if the reader retries after a timed-out but accepted send.
func (c *Client) Send(ctx context.Context, conversationID, content string) (chat.Ack, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return chat.Ack{}, err
	}

	body := struct {
		Content        string `json:"content"`
		IdempotencyKey string `json:"idempotency_key"`
	}{Content: content, IdempotencyKey: uuid.NewString()}

	var out chat.Ack
	path := fmt.Sprintf("/conversations/%s/messages", url.PathEscape(conversationID))
	if err := c.post(ctx, path, body, &out); err != nil {
		return chat.Ack{}, fmt.Errorf("send: %w", err)
	}
	return out, nil
}

// Techniques lists the Socratic techniques the server supports.
func (c *Client) Techniques(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.get(ctx, "/techniques", &out); err != nil {
		// The endpoint is optional; fall back to the built-in list.
		log.Debug().Err(err).Msg("techniques endpoint unavailable, using defaults")
		return append([]string(nil), constants.Techniques...), nil
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}
