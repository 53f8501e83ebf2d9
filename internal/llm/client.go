package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/trademaster-labs/trademaster/internal/config"
	"github.com/trademaster-labs/trademaster/internal/metrics"
)

// Sentinel errors callers can branch on.
var (
	// ErrUnavailable means no completion could be produced at all
	// (missing key, auth failure, unreachable endpoint).
	ErrUnavailable = errors.New("llm: unavailable")
	// ErrRateLimited means the provider rejected the call with a 429.
	ErrRateLimited = errors.New("llm: rate limited")
)

// Message is a single turn in a chat completion prompt.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Roles accepted in Message.Role.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client is the completion interface the pipeline depends on.
type Client interface {
	// Complete sends the message list and returns the assistant reply text.
	Complete(ctx context.Context, purpose string, messages []Message, maxTokens int) (string, error)
	// Configured reports whether completions can be attempted at all.
	Configured() bool
}

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	api         *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	configured  bool
}

// NewClient builds a client from config. An empty API key yields a client
// whose Complete always returns ErrUnavailable, so the pipeline can degrade
// instead of crashing.
func NewClient(cfg config.LLMConfig) *OpenAIClient {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
		configured:  cfg.Configured(),
	}
}

// Configured reports whether an API key was provided.
func (c *OpenAIClient) Configured() bool {
	return c.configured
}

// Complete sends a chat completion request and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, purpose string, messages []Message, maxTokens int) (string, error) {
	if !c.configured {
		return "", ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   maxTokens,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	metrics.LLMCallDuration.WithLabelValues(purpose).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMCallsTotal.WithLabelValues(purpose, "error").Inc()
		return "", classifyError(err)
	}
	metrics.LLMCallsTotal.WithLabelValues(purpose, "ok").Inc()

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty completion for %s", purpose)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("llm: completion failed: %w", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		slog.Warn("LLM call timed out")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
