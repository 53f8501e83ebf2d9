package handlers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/trademaster-labs/trademaster/internal/pricefeed"
)

var symbolRe = regexp.MustCompile(`\b(BTC|ETH|SOL|BNB|XRP|ADA|DOGE|DOT|MATIC|AVAX|LINK|UNI|ATOM|LTC|ARB|OP)\b`)

// MarketHandler answers price and market questions from the price feed.
type MarketHandler struct {
	feed pricefeed.Feed
}

// NewMarketHandler creates a market handler.
func NewMarketHandler(feed pricefeed.Feed) *MarketHandler {
	return &MarketHandler{feed: feed}
}

func (h *MarketHandler) Process(ctx context.Context, text string, req Requester) (string, error) {
	symbols := dedupe(symbolRe.FindAllString(strings.ToUpper(text), -1))
	if len(symbols) == 0 {
		return "Which coin are you asking about? I can pull live prices for the majors (BTC, ETH, SOL, ...).", nil
	}

	var b strings.Builder
	for _, sym := range symbols {
		q, err := h.feed.Quote(ctx, sym)
		if err != nil {
			if errors.Is(err, pricefeed.ErrUnknownSymbol) {
				fmt.Fprintf(&b, "%s: no price feed for that one.\n", sym)
				continue
			}
			return "", fmt.Errorf("quoting %s: %w", sym, err)
		}
		fmt.Fprintf(&b, "%s is at $%.2f (%+.2f%% over 24h).\n", q.Symbol, q.PriceUSD, q.Change24h)
	}
	return strings.TrimSpace(b.String()), nil
}
