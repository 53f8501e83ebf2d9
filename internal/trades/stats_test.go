package trades

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pct(v float64) *float64 { return &v }

func completed(profitPct float64) Trade {
	return Trade{TradeType: TypeComplete, ProfitPct: pct(profitPct)}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats("u1", nil)
	assert.Equal(t, int64(0), stats.TotalTrades)
	assert.Zero(t, stats.WinRate())
}

func TestComputeStats_MixedTrades(t *testing.T) {
	all := []Trade{
		completed(10),
		completed(-5),
		completed(25),
		completed(-12),
		{TradeType: TypeOpen}, // no exit yet
		{TradeType: TypeComplete, ProfitPct: nil}, // exit without computable P/L
	}

	stats := ComputeStats("u1", all)

	assert.Equal(t, int64(4), stats.TotalTrades)
	assert.Equal(t, int64(2), stats.WinningTrades)
	assert.InDelta(t, 4.5, stats.AvgProfitPct, 0.001)
	assert.InDelta(t, 25, stats.LargestWinPct, 0.001)
	assert.InDelta(t, -12, stats.LargestLossPct, 0.001)
	assert.InDelta(t, 0.5, stats.WinRate(), 0.001)
}

func TestComputeStats_AllLosses(t *testing.T) {
	stats := ComputeStats("u1", []Trade{completed(-3), completed(-7)})

	assert.Equal(t, int64(2), stats.TotalTrades)
	assert.Equal(t, int64(0), stats.WinningTrades)
	assert.Zero(t, stats.LargestWinPct)
	assert.InDelta(t, -7, stats.LargestLossPct, 0.001)
	assert.Zero(t, stats.WinRate())
}

func TestComputeStats_BreakEvenIsNotAWin(t *testing.T) {
	stats := ComputeStats("u1", []Trade{completed(0)})

	assert.Equal(t, int64(1), stats.TotalTrades)
	assert.Equal(t, int64(0), stats.WinningTrades)
}
