// Package llm wraps an OpenAI-compatible chat completion endpoint behind the
// TextTransformer contract. The model only reformats already-fetched data;
// no retries are performed here, callers own their fallbacks.
package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog"
)

// Config holds the endpoint settings.
type Config struct {
	APIKey  string
	BaseURL string // empty means the provider default
	Model   string
}

// Client calls a chat completion endpoint with a single user message.
type Client struct {
	client openai.Client
	model  string
	log    zerolog.Logger
}

// NewClient creates a new LLM client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		log:    log.With().Str("client", "llm").Logger(),
	}
}

// Invoke sends prompt as a single user message and returns the completion
// text. Deterministic settings: the model is a formatter, not an author.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	content := completion.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}

	c.log.Debug().Int("prompt_len", len(prompt)).Int("response_len", len(content)).Msg("Completion received")
	return content, nil
}
