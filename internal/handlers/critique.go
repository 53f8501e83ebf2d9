package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/trademaster-labs/trademaster/internal/trades"
)

var (
	tradeSymbolRe = regexp.MustCompile(`(?i)(?:bought|sold|traded|longed|shorted|long|short)\s+(?:some\s+)?([A-Za-z]{2,5})\b`)
	tradePriceRe  = regexp.MustCompile(`(?i)(?:at|for|from|to)\s+\$?([\d,]+(?:\.\d+)?)`)
	stopLossRe    = regexp.MustCompile(`(?i)(?:stop loss|sl)(?:\s+at)?\s+\$?([\d,]+(?:\.\d+)?)`)
	takeProfitRe  = regexp.MustCompile(`(?i)(?:take profit|tp)(?:\s+at)?\s+\$?([\d,]+(?:\.\d+)?)`)
	shortRe       = regexp.MustCompile(`(?i)\bshort(?:ed)?\b`)
)

// CritiqueHandler parses a described trade, records it, and gives
// performance feedback.
type CritiqueHandler struct {
	trades *trades.Service
}

// NewCritiqueHandler creates a critique handler.
func NewCritiqueHandler(svc *trades.Service) *CritiqueHandler {
	return &CritiqueHandler{trades: svc}
}

func (h *CritiqueHandler) Process(ctx context.Context, text string, req Requester) (string, error) {
	trade, ok := parseTrade(text)
	if !ok {
		return "Tell me the trade like \"bought SOL at $20, sold at $35\" and I'll break it down for you.", nil
	}
	trade.UserID = req.ID
	trade.RawText = text

	if err := h.trades.Record(ctx, trade); err != nil {
		return "", fmt.Errorf("recording trade: %w", err)
	}

	var b strings.Builder

	if trade.TradeType == trades.TypeComplete && trade.ProfitPct != nil {
		pct := *trade.ProfitPct
		switch {
		case pct > 0:
			fmt.Fprintf(&b, "Nice one. %s entry $%.2f, exit $%.2f: +%.1f%%.\n", trade.Symbol, trade.EntryPrice, *trade.ExitPrice, pct)
		case pct < 0:
			fmt.Fprintf(&b, "Rough one. %s entry $%.2f, exit $%.2f: %.1f%%.\n", trade.Symbol, trade.EntryPrice, *trade.ExitPrice, pct)
		default:
			fmt.Fprintf(&b, "Break-even on %s. Better than a loss.\n", trade.Symbol)
		}

		stats, err := h.trades.Stats(ctx, req.ID)
		if err != nil {
			return "", fmt.Errorf("loading stats: %w", err)
		}
		if stats != nil && stats.TotalTrades > 0 {
			fmt.Fprintf(&b, "Your record: %d trades, %.0f%% win rate, %.1f%% average.\n",
				stats.TotalTrades, stats.WinRate()*100, stats.AvgProfitPct)
		}
	} else {
		fmt.Fprintf(&b, "Logged your open %s position at $%.2f.\n", trade.Symbol, trade.EntryPrice)
	}

	if feedback := riskFeedback(trade); feedback != "" {
		b.WriteString(feedback)
	}

	return strings.TrimSpace(b.String()), nil
}

// parseTrade extracts a trade from free text. Requires a symbol and at
// least one price; two prices make it a completed trade.
func parseTrade(text string) (*trades.Trade, bool) {
	symMatch := tradeSymbolRe.FindStringSubmatch(text)
	if symMatch == nil {
		return nil, false
	}

	t := &trades.Trade{
		Symbol:    strings.ToUpper(symMatch[1]),
		TradeType: trades.TypeOpen,
	}

	if m := stopLossRe.FindStringSubmatch(text); m != nil {
		if v, err := parsePrice(m[1]); err == nil {
			t.StopLoss = &v
		}
	}
	if m := takeProfitRe.FindStringSubmatch(text); m != nil {
		if v, err := parsePrice(m[1]); err == nil {
			t.TakeProfit = &v
		}
	}

	// Stop-loss and take-profit clauses contain "at $X" too; they must
	// not read as entry or exit prices.
	stripped := stopLossRe.ReplaceAllString(text, "")
	stripped = takeProfitRe.ReplaceAllString(stripped, "")

	var prices []float64
	for _, m := range tradePriceRe.FindAllStringSubmatch(stripped, -1) {
		if v, err := parsePrice(m[1]); err == nil {
			prices = append(prices, v)
		}
	}
	if len(prices) == 0 {
		return nil, false
	}
	t.EntryPrice = prices[0]

	if len(prices) >= 2 {
		exit := prices[1]
		t.ExitPrice = &exit
		t.TradeType = trades.TypeComplete

		pct := (exit - t.EntryPrice) / t.EntryPrice * 100
		if shortRe.MatchString(text) {
			pct = -pct
		}
		t.ProfitPct = &pct
	}

	return t, true
}

// riskFeedback comments on the risk/reward ratio when both stop loss
// and take profit levels are present.
func riskFeedback(t *trades.Trade) string {
	if t.StopLoss == nil || t.TakeProfit == nil {
		if t.TradeType == trades.TypeOpen && t.StopLoss == nil {
			return "No stop loss mentioned. Set one before the market sets it for you."
		}
		return ""
	}

	risk := t.EntryPrice - *t.StopLoss
	reward := *t.TakeProfit - t.EntryPrice
	if risk <= 0 || reward <= 0 {
		return ""
	}

	ratio := reward / risk
	if ratio < 1 {
		return fmt.Sprintf("Risk/reward is %.1f:1 against you. You're risking more than you stand to gain.", ratio)
	}
	return fmt.Sprintf("Risk/reward of %.1f:1 looks solid.", ratio)
}

func parsePrice(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}
