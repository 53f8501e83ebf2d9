package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trademaster-labs/trademaster/internal/llm"
)

// degradedReply is sent when there is neither a tool result nor a
// working LLM to answer from.
const degradedReply = "I'm running in a limited mode right now, so I can't give you a full answer. Price checks and trade logging still work."

// Synthesizer turns a raw handler result into a conversational reply in
// the bot's voice. It never fails: when the LLM is unavailable the
// handler result passes through verbatim.
type Synthesizer struct {
	client    llm.Client
	maxTokens int
}

// NewSynthesizer creates a synthesizer. maxTokens caps the reply length;
// zero or negative falls back to 500.
func NewSynthesizer(client llm.Client, maxTokens int) *Synthesizer {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &Synthesizer{client: client, maxTokens: maxTokens}
}

// Synthesize blends the tool result with conversation history. history
// already carries the refreshed system message; userText is the turn
// being answered.
func (s *Synthesizer) Synthesize(ctx context.Context, history []llm.Message, userText, toolResult string) string {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userText})
	if toolResult != "" {
		messages = append(messages, llm.Message{
			Role:    llm.RoleSystem,
			Content: fmt.Sprintf("Tool result for this message:\n%s\nAnswer the user in your own voice using this result. Keep every number exactly as given. Do not contradict the result or make up information beyond what it provides.", toolResult),
		})
	}

	reply, err := s.client.Complete(ctx, "synthesize", messages, s.maxTokens)
	if err != nil {
		slog.Debug("synthesis degraded to pass-through", "error", err)
		if toolResult != "" {
			return toolResult
		}
		return degradedReply
	}
	return reply
}
