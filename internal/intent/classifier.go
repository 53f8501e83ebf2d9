package intent

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/trademaster-labs/trademaster/internal/llm"
	"github.com/trademaster-labs/trademaster/internal/metrics"
)

const classifyPrompt = `You are an intent classifier for a crypto trading community bot.
Classify the user message into exactly one of: wallet, market, critique, general.

wallet: the message contains or asks about a blockchain wallet address or its holdings.
market: the message asks about prices, charts, or market conditions.
critique: the message describes a trade the user made and invites feedback.
general: anything else.

Reply with only the label and a confidence between 0 and 1, separated by a pipe.
Example: market|0.92`

// Classifier assigns one of the four intents to every message. It never
// returns an error; degraded paths fall back to keyword rules or the
// general intent.
type Classifier struct {
	client llm.Client
}

// NewClassifier creates a classifier backed by the given LLM client.
func NewClassifier(client llm.Client) *Classifier {
	return &Classifier{client: client}
}

// Classify returns an intent for the message. The LLM is consulted
// first; on any LLM failure the keyword rules decide, with confidence
// 0.6. A reply that parses but names an unknown label coerces to
// general with confidence 0.7.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	reply, err := c.client.Complete(ctx, "classify", []llm.Message{
		{Role: llm.RoleSystem, Content: classifyPrompt},
		{Role: llm.RoleUser, Content: text},
	}, 20)
	if err != nil {
		slog.Debug("intent classification falling back to rules", "error", err)
		res := Result{Intent: classifyByRules(text), Confidence: 0.6, Source: "fallback"}
		metrics.IntentsTotal.WithLabelValues(string(res.Intent), res.Source).Inc()
		return res
	}

	res := parseReply(reply)
	metrics.IntentsTotal.WithLabelValues(string(res.Intent), res.Source).Inc()
	return res
}

func parseReply(reply string) Result {
	label, confStr, found := strings.Cut(strings.TrimSpace(strings.ToLower(reply)), "|")
	label = strings.TrimSpace(label)

	if !Valid(label) {
		return Result{Intent: General, Confidence: 0.7, Source: "llm"}
	}

	conf := 0.7
	if found {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(confStr), 64); err == nil && parsed >= 0 && parsed <= 1 {
			conf = parsed
		}
	}
	return Result{Intent: Intent(label), Confidence: conf, Source: "llm"}
}
