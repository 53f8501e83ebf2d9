package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trademaster-labs/trademaster/internal/llm"
)

func TestSynthesize_BlendsToolResult(t *testing.T) {
	s := NewSynthesizer(&fakeLLM{replies: map[string]string{"synthesize": "BTC is sitting at $64250, up a couple percent."}}, 0)

	history := []llm.Message{{Role: llm.RoleSystem, Content: "persona"}}
	got := s.Synthesize(context.Background(), history, "btc price?", "BTC is at $64250.00 (+2.31% over 24h).")
	assert.Equal(t, "BTC is sitting at $64250, up a couple percent.", got)
}

func TestSynthesize_PromptConstrainsToToolResult(t *testing.T) {
	client := &fakeLLM{replies: map[string]string{"synthesize": "ok"}}
	s := NewSynthesizer(client, 0)

	s.Synthesize(context.Background(), nil, "btc price?", "BTC is at $64250.00.")

	last := client.lastMessages[len(client.lastMessages)-1]
	assert.Equal(t, llm.RoleSystem, last.Role)
	assert.Contains(t, last.Content, "Keep every number exactly as given")
	assert.Contains(t, last.Content, "Do not contradict the result or make up information")
}

func TestSynthesize_PassThroughWhenLLMDown(t *testing.T) {
	s := NewSynthesizer(&fakeLLM{errs: map[string]error{"synthesize": llm.ErrUnavailable}}, 0)

	toolResult := "BTC is at $64250.00 (+2.31% over 24h)."
	got := s.Synthesize(context.Background(), nil, "btc price?", toolResult)
	assert.Equal(t, toolResult, got, "tool result must pass through unchanged")
}

func TestSynthesize_DegradedWithoutToolResult(t *testing.T) {
	s := NewSynthesizer(&fakeLLM{errs: map[string]error{"synthesize": llm.ErrRateLimited}}, 0)

	got := s.Synthesize(context.Background(), nil, "how are you?", "")
	assert.Equal(t, degradedReply, got)
}
