package trades

// ComputeStats folds completed trades into aggregate stats. Trades
// without a profit percentage are ignored.
func ComputeStats(userID string, all []Trade) Stats {
	stats := Stats{UserID: userID}

	var sum float64
	for _, t := range all {
		if t.TradeType != TypeComplete || t.ProfitPct == nil {
			continue
		}
		pct := *t.ProfitPct
		stats.TotalTrades++
		sum += pct
		if pct > 0 {
			stats.WinningTrades++
		}
		if pct > stats.LargestWinPct {
			stats.LargestWinPct = pct
		}
		if pct < stats.LargestLossPct {
			stats.LargestLossPct = pct
		}
	}

	if stats.TotalTrades > 0 {
		stats.AvgProfitPct = sum / float64(stats.TotalTrades)
	}
	return stats
}
