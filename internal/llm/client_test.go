package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademaster-labs/trademaster/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.LLMConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL + "/v1",
		Model:       "llama3-70b-8192",
		Temperature: 0.7,
		MaxTokens:   500,
		Timeout:     5 * time.Second,
	})
}

func completionBody(content string) []byte {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "llama3-70b-8192",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
	return body
}

func TestComplete_ReturnsTrimmedText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody("  market|0.92  "))
	})

	got, err := client.Complete(context.Background(), "classify", []Message{
		{Role: RoleSystem, Content: "classify the message"},
		{Role: RoleUser, Content: "what is the price of BTC?"},
	}, 20)
	require.NoError(t, err)
	assert.Equal(t, "market|0.92", got)
}

func TestComplete_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded","type":"tokens"}}`))
	})

	_, err := client.Complete(context.Background(), "classify", []Message{
		{Role: RoleUser, Content: "hello"},
	}, 20)
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestComplete_AuthFailureIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})

	_, err := client.Complete(context.Background(), "gate", []Message{
		{Role: RoleUser, Content: "hello"},
	}, 20)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestComplete_NoKeyIsUnavailable(t *testing.T) {
	client := NewClient(config.LLMConfig{Timeout: time.Second})
	assert.False(t, client.Configured())

	_, err := client.Complete(context.Background(), "handler", []Message{
		{Role: RoleUser, Content: "hello"},
	}, 20)
	require.ErrorIs(t, err, ErrUnavailable)
}
