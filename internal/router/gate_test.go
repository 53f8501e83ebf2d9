package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trademaster-labs/trademaster/internal/llm"
	inats "github.com/trademaster-labs/trademaster/internal/nats"
)

// fakeLLM returns canned replies or errors keyed by purpose.
type fakeLLM struct {
	replies      map[string]string
	errs         map[string]error
	calls        []string
	lastMessages []llm.Message
}

func (f *fakeLLM) Complete(_ context.Context, purpose string, messages []llm.Message, _ int) (string, error) {
	f.calls = append(f.calls, purpose)
	f.lastMessages = messages
	if err, ok := f.errs[purpose]; ok {
		return "", err
	}
	return f.replies[purpose], nil
}

func (f *fakeLLM) Configured() bool { return true }

func ambient(text string) inats.InboundChat {
	return inats.InboundChat{RequesterID: "u1", ChannelID: "chan-1", Text: text}
}

func TestGate_DirectAlwaysResponds(t *testing.T) {
	g := NewGate(&fakeLLM{errs: map[string]error{"gate": llm.ErrUnavailable}})

	msg := ambient("anything at all")
	msg.Direct = true
	assert.True(t, g.ShouldRespond(context.Background(), msg, false))
}

func TestGate_IrrelevantAmbientSkipsLLM(t *testing.T) {
	f := &fakeLLM{replies: map[string]string{"gate": "yes"}}
	g := NewGate(f)

	assert.False(t, g.ShouldRespond(context.Background(), ambient("lol nice weather today"), false))
	assert.Empty(t, f.calls, "irrelevant chatter must not reach the LLM")
}

func TestGate_RelevantAmbientAsksLLM(t *testing.T) {
	g := NewGate(&fakeLLM{replies: map[string]string{"gate": "yes"}})
	assert.True(t, g.ShouldRespond(context.Background(), ambient("anyone know the BTC price?"), false))

	g = NewGate(&fakeLLM{replies: map[string]string{"gate": "no"}})
	assert.False(t, g.ShouldRespond(context.Background(), ambient("anyone know the BTC price?"), false))
}

func TestGate_RecentExchangeCountsAsRelevant(t *testing.T) {
	f := &fakeLLM{replies: map[string]string{"gate": "yes"}}
	g := NewGate(f)

	assert.True(t, g.ShouldRespond(context.Background(), ambient("and then what happened"), true))
	assert.Equal(t, []string{"gate"}, f.calls)
}

func TestGate_LLMFailureStaysQuiet(t *testing.T) {
	g := NewGate(&fakeLLM{errs: map[string]error{"gate": llm.ErrUnavailable}})
	assert.False(t, g.ShouldRespond(context.Background(), ambient("what's the BTC price?"), false))
}
