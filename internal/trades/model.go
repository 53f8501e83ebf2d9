package trades

import "time"

// Trade types.
const (
	// TypeComplete is a closed trade with entry and exit prices.
	TypeComplete = "complete"
	// TypeOpen is an entry-only trade, possibly with stop loss or
	// take profit levels.
	TypeOpen = "open"
)

// Trade is one recorded trade, parsed from a user's message.
type Trade struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	Symbol     string    `json:"symbol"`
	TradeType  string    `json:"trade_type"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  *float64  `json:"exit_price,omitempty"`
	StopLoss   *float64  `json:"stop_loss,omitempty"`
	TakeProfit *float64  `json:"take_profit,omitempty"`
	ProfitPct  *float64  `json:"profit_pct,omitempty"`
	RawText    string    `json:"raw_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Stats is the aggregate performance row for a user, recomputed from
// all of their completed trades.
type Stats struct {
	UserID         string    `json:"user_id"`
	TotalTrades    int64     `json:"total_trades"`
	WinningTrades  int64     `json:"winning_trades"`
	AvgProfitPct   float64   `json:"avg_profit_pct"`
	LargestWinPct  float64   `json:"largest_win_pct"`
	LargestLossPct float64   `json:"largest_loss_pct"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// WinRate returns the fraction of completed trades that were profitable.
func (s Stats) WinRate() float64 {
	if s.TotalTrades == 0 {
		return 0
	}
	return float64(s.WinningTrades) / float64(s.TotalTrades)
}
