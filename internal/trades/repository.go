package trades

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines trade persistence operations.
type Repository interface {
	Insert(ctx context.Context, trade *Trade) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Trade, error)
	AllByUser(ctx context.Context, userID string) ([]Trade, error)
	SaveStats(ctx context.Context, stats Stats) error
	GetStats(ctx context.Context, userID string) (*Stats, error)
}

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new trade repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Insert(ctx context.Context, trade *Trade) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO trades (user_id, symbol, trade_type, entry_price, exit_price, stop_loss, take_profit, profit_pct, raw_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		trade.UserID, trade.Symbol, trade.TradeType, trade.EntryPrice,
		trade.ExitPrice, trade.StopLoss, trade.TakeProfit, trade.ProfitPct, trade.RawText,
	).Scan(&trade.ID, &trade.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting trade: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Trade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, symbol, trade_type, entry_price, exit_price, stop_loss, take_profit, profit_pct, raw_text, created_at
		 FROM trades
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

func (r *PostgresRepository) AllByUser(ctx context.Context, userID string) ([]Trade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, symbol, trade_type, entry_price, exit_price, stop_loss, take_profit, profit_pct, raw_text, created_at
		 FROM trades
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing all trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

func scanTrades(rows pgx.Rows) ([]Trade, error) {
	var out []Trade
	for rows.Next() {
		var t Trade
		if err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &t.TradeType, &t.EntryPrice,
			&t.ExitPrice, &t.StopLoss, &t.TakeProfit, &t.ProfitPct, &t.RawText, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning trade: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) SaveStats(ctx context.Context, stats Stats) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_stats (user_id, total_trades, winning_trades, avg_profit_pct, largest_win_pct, largest_loss_pct, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET total_trades = EXCLUDED.total_trades,
		     winning_trades = EXCLUDED.winning_trades,
		     avg_profit_pct = EXCLUDED.avg_profit_pct,
		     largest_win_pct = EXCLUDED.largest_win_pct,
		     largest_loss_pct = EXCLUDED.largest_loss_pct,
		     updated_at = now()`,
		stats.UserID, stats.TotalTrades, stats.WinningTrades,
		stats.AvgProfitPct, stats.LargestWinPct, stats.LargestLossPct,
	)
	if err != nil {
		return fmt.Errorf("saving stats: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetStats(ctx context.Context, userID string) (*Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, total_trades, winning_trades, avg_profit_pct, largest_win_pct, largest_loss_pct, updated_at
		 FROM user_stats WHERE user_id = $1`,
		userID,
	).Scan(&s.UserID, &s.TotalTrades, &s.WinningTrades, &s.AvgProfitPct, &s.LargestWinPct, &s.LargestLossPct, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	return &s, nil
}
