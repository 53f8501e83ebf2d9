package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademaster-labs/trademaster/internal/pricefeed"
)

type stubFeed struct {
	quotes map[string]*pricefeed.Quote
}

func (s *stubFeed) Quote(_ context.Context, symbol string) (*pricefeed.Quote, error) {
	q, ok := s.quotes[symbol]
	if !ok {
		return nil, pricefeed.ErrUnknownSymbol
	}
	return q, nil
}

func TestMarketHandler_QuotesMentionedSymbols(t *testing.T) {
	h := NewMarketHandler(&stubFeed{quotes: map[string]*pricefeed.Quote{
		"BTC": {Symbol: "BTC", PriceUSD: 64250.50, Change24h: 2.31, FetchedAt: time.Now()},
		"ETH": {Symbol: "ETH", PriceUSD: 3105.00, Change24h: -1.2, FetchedAt: time.Now()},
	}})

	out, err := h.Process(context.Background(), "how are BTC and ETH doing?", Requester{ID: "u1"})
	require.NoError(t, err)
	assert.Contains(t, out, "BTC is at $64250.50")
	assert.Contains(t, out, "+2.31%")
	assert.Contains(t, out, "ETH is at $3105.00")
	assert.Contains(t, out, "-1.20%")
}

func TestMarketHandler_NoSymbolAsksForOne(t *testing.T) {
	h := NewMarketHandler(&stubFeed{})

	out, err := h.Process(context.Background(), "is the market pumping?", Requester{ID: "u1"})
	require.NoError(t, err)
	assert.Contains(t, out, "Which coin")
}

func TestGeneralHandler_Glossary(t *testing.T) {
	h := NewGeneralHandler()

	out, err := h.Process(context.Background(), "what is dca?", Requester{ID: "u1"})
	require.NoError(t, err)
	assert.Contains(t, out, "dollar cost averaging")
}

func TestGeneralHandler_NonGlossaryReturnsEmpty(t *testing.T) {
	h := NewGeneralHandler()

	out, err := h.Process(context.Background(), "how was your weekend?", Requester{ID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, out)
}
