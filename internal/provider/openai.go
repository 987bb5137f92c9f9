package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/shettydev/mukti-tui/internal/chat"
	"github.com/shettydev/mukti-tui/internal/config"
)

// Socratic stances per questioning technique. The model never answers
// directly; it only asks.
var techniquePrompts = map[string]string{
	"elenchus":       "Use elenchus: probe the user's stated beliefs for contradictions. Ask one short question at a time that tests whether their claims are consistent with each other.",
	"maieutics":      "Use maieutics: draw out what the user already half-knows. Ask one short question at a time that helps them articulate their own latent understanding.",
	"dialectic":      "Use dialectic: advance the inquiry through thesis and antithesis. Ask one short question at a time that sets the user's position against its strongest opposite.",
	"counterexample": "Use counterexamples: whenever the user offers a definition or general claim, ask one short question presenting a case that seems to defeat it.",
	"definition":     "Use definitional inquiry: press the user to define their terms. Ask one short question at a time that exposes vagueness or circularity in their definitions.",
}

const basePrompt = "You are a Socratic guide. Never state answers, opinions, or facts directly. Respond only with questions that lead the user toward their own insight. Keep each reply to one or two sentences."

// OpenAIProvider streams replies from any OpenAI-compatible chat
// completions endpoint, including local Ollama at /v1.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float64
	limiter     *rate.Limiter
}

// NewOpenAI creates a provider from config. An empty API key is fine
// for local endpoints.
func NewOpenAI(cfg config.ProviderConfig) *OpenAIProvider {
	cc := openai.DefaultConfig(cfg.APIKey())
	// Endpoints may be given with or without the /v1 suffix.
	base := strings.TrimRight(cfg.Endpoint, "/")
	base = strings.TrimSuffix(base, "/v1")
	cc.BaseURL = base + "/v1"

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(cc),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		limiter:     limiter,
	}
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Stream sends the conversation history and returns a channel that
// streams response chunks.
func (p *OpenAIProvider) Stream(ctx context.Context, technique string, history []chat.Message) (<-chan StreamChunk, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toCompletionMessages(technique, history),
		Temperature: float32(p.temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("create completion stream: %w", err)
	}

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				ch <- StreamChunk{Done: true}
				return
			}
			if err != nil {
				ch <- StreamChunk{Err: err}
				return
			}

			if len(resp.Choices) > 0 {
				ch <- StreamChunk{Content: resp.Choices[0].Delta.Content}
			}
		}
	}()

	return ch, nil
}

// toCompletionMessages builds the request: system prompt first, then
// the history in chronological order.
func toCompletionMessages(technique string, history []chat.Message) []openai.ChatCompletionMessage {
	system := basePrompt
	if stance, ok := techniquePrompts[technique]; ok {
		system += " " + stance
	}

	result := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	result = append(result, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})

	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == chat.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		result = append(result, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	return result
}
