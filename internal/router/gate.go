package router

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/trademaster-labs/trademaster/internal/llm"
	"github.com/trademaster-labs/trademaster/internal/nats"
)

const gatePrompt = `You decide whether a trading-community bot should reply to a channel message it was not directly asked.
The bot only chimes in when it can add real value: price questions, trade discussion, wallet addresses, or questions left hanging.
Reply with only "yes" or "no".`

var relevanceRe = regexp.MustCompile(`(?i)(0x[a-fA-F0-9]{40}|\b(btc|eth|sol|price|chart|market|trade|bought|sold|long|short|wallet|pump|dump|stop loss|take profit)\b|\?$)`)

// Gate decides whether an inbound message deserves a reply at all.
type Gate struct {
	client llm.Client
}

// NewGate creates a response gate.
func NewGate(client llm.Client) *Gate {
	return &Gate{client: client}
}

// ShouldRespond returns true when the bot should reply. Direct
// messages and mentions always pass. Ambient channel chatter passes
// only when it looks relevant or continues a recent exchange, and the
// LLM confirms. Any LLM failure suppresses: staying quiet is the safe
// failure mode for unprompted replies.
func (g *Gate) ShouldRespond(ctx context.Context, msg nats.InboundChat, recentExchange bool) bool {
	if msg.Direct {
		return true
	}

	if !relevanceRe.MatchString(msg.Text) && !recentExchange {
		return false
	}

	reply, err := g.client.Complete(ctx, "gate", []llm.Message{
		{Role: llm.RoleSystem, Content: gatePrompt},
		{Role: llm.RoleUser, Content: msg.Text},
	}, 5)
	if err != nil {
		slog.Debug("gate check failed, staying quiet", "channel_id", msg.ChannelID, "error", err)
		return false
	}

	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(reply)), "yes")
}
