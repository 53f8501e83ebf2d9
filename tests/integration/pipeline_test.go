//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademaster-labs/trademaster/internal/intent"
	inats "github.com/trademaster-labs/trademaster/internal/nats"
)

func directMessage(requesterID, text string) inats.InboundChat {
	return inats.InboundChat{
		ID:            fmt.Sprintf("msg-%d", uniqueID()),
		RequesterID:   requesterID,
		RequesterName: "tester",
		ChannelID:     requesterID,
		Text:          text,
		Direct:        true,
		ReceivedAt:    time.Now().UTC(),
	}
}

func TestPipeline_WalletTurnPersists(t *testing.T) {
	env := SetupTestEnv(t)
	ctx := context.Background()

	userID := fmt.Sprintf("wallet-%d@chat.test", uniqueID())
	addr := "0x1234567890abcdef1234567890abcdef12345678"

	reply, respond, label := env.Engine.Process(ctx, directMessage(userID, "track my wallet "+addr))
	require.True(t, respond)
	assert.Contains(t, reply, "0x1234")
	assert.Equal(t, intent.Wallet, label)

	wallets, err := env.MemorySvc.Wallets(ctx, userID)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, addr, wallets[0].Address)

	profile, err := env.MemorySvc.Touch(ctx, userID, "tester")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, profile.InteractionCount, int64(2))
}

func TestPipeline_CritiqueTurnRecordsTrade(t *testing.T) {
	env := SetupTestEnv(t)
	ctx := context.Background()
	token := AdminToken(t, env)

	userID := fmt.Sprintf("critique-%d@chat.test", uniqueID())

	reply, respond, _ := env.Engine.Process(ctx,
		directMessage(userID, "bought ETH at 2000 and sold at 2200, stop loss at 1900"))
	require.True(t, respond)
	assert.NotEmpty(t, reply)

	recent, err := env.TradeSvc.Recent(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "ETH", recent[0].Symbol)
	require.NotNil(t, recent[0].ProfitPct)
	assert.InDelta(t, 10.0, *recent[0].ProfitPct, 0.01)

	resp := DoRequest(t, env, "GET", fmt.Sprintf("/api/v1/users/%s/stats", userID), nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := ParseResponse(t, resp)["data"].(map[string]any)
	assert.Equal(t, float64(1), stats["total_trades"])
	assert.Equal(t, float64(1), stats["winning_trades"])
}

func TestPipeline_AmbientOffTopicStaysQuiet(t *testing.T) {
	env := SetupTestEnv(t)
	ctx := context.Background()

	userID := fmt.Sprintf("lurker-%d@chat.test", uniqueID())
	inbound := inats.InboundChat{
		ID:            fmt.Sprintf("msg-%d", uniqueID()),
		RequesterID:   userID,
		RequesterName: "lurker",
		ChannelID:     "room@conference.chat.test",
		ChannelName:   "room",
		Text:          "lol that movie last night was great",
		Groupchat:     true,
		ReceivedAt:    time.Now().UTC(),
	}

	reply, respond, _ := env.Engine.Process(ctx, inbound)
	assert.False(t, respond)
	assert.Empty(t, reply)

	// The channel log still records the message for context.
	msgs, err := env.MemorySvc.ChannelContext(ctx, "room@conference.chat.test", 10)
	require.NoError(t, err)
	require.NotEmpty(t, msgs)
}

func TestPipeline_ConversationResetViaAPI(t *testing.T) {
	env := SetupTestEnv(t)
	ctx := context.Background()
	token := AdminToken(t, env)

	userID := fmt.Sprintf("reset-%d@chat.test", uniqueID())

	_, respond, _ := env.Engine.Process(ctx, directMessage(userID, "what is hodl?"))
	require.True(t, respond)

	path := fmt.Sprintf("/api/v1/users/%s/conversation/reset", userID)

	resp := DoRequest(t, env, "POST", path, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := ParseResponse(t, resp)["data"].(map[string]any)
	assert.Equal(t, true, data["had_conversation"])

	resp = DoRequest(t, env, "POST", path, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = ParseResponse(t, resp)["data"].(map[string]any)
	assert.Equal(t, false, data["had_conversation"])
}
