// Package llm wraps the text-generation collaborator: an OpenAI-compatible
// chat-completions endpoint (the HuggingFace router by default) reached with
// bearer-token auth.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"slackbridge/internal/config"
)

// UpstreamError is a failure reported by the generation endpoint.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm upstream error (status %d): %s", e.Status, e.Message)
}

// Client generates text through a chat-completions API.
type Client struct {
	api         openai.Client
	model       string
	maxTokens   int64
	temperature float64
	topP        float64
}

// New creates a Client from the LLM configuration.
func New(cfg config.LLMConfig) *Client {
	return &Client{
		api: openai.NewClient(
			option.WithAPIKey(cfg.Token),
			option.WithBaseURL(cfg.BaseURL),
			option.WithRequestTimeout(cfg.Timeout),
		),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}
}

// Generate sends a single-turn prompt and returns the assistant reply text.
// Upstream HTTP failures surface as *UpstreamError.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(c.temperature),
		TopP:        openai.Float(c.topP),
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return "", &UpstreamError{Status: apierr.StatusCode, Message: apierr.Message}
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", &UpstreamError{Status: 200, Message: "empty choices in completion"}
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// Ping sends a one-word prompt to confirm the endpoint, token, and model are
// usable. Used by the doctor command.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Generate(ctx, "ping")
	return err
}
