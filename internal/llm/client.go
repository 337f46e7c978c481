package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
)

// ErrRateLimited is returned when the gateway answers 429.
var ErrRateLimited = errors.New("llm gateway rate limited")

// Completion is a single assistant answer with token accounting.
type Completion struct {
	Content          string
	Model            string
	PromptTokens     int64
	CompletionTokens int64
}

// Client sends one system + user prompt pair and returns the answer.
type Client interface {
	Complete(ctx context.Context, system, user string) (*Completion, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

type openaiClient struct {
	client openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenAIClient creates a Client for any OpenAI-compatible chat completions gateway.
func NewOpenAIClient(cfg Config, logger zerolog.Logger) Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = "google/gemini-2.5-flash"
	}
	return &openaiClient{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger.With().Str("component", "llm").Logger(),
	}
}

func (c *openaiClient) Complete(ctx context.Context, system, user string) (*Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	c.logger.Debug().
		Str("model", c.model).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("chat completion finished")

	return &Completion{
		Content:          resp.Choices[0].Message.Content,
		Model:            c.model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
