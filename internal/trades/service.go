package trades

import (
	"context"
	"fmt"
)

// Service records trades and keeps aggregate stats current.
type Service struct {
	repo Repository
}

// NewService creates a trade service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores a trade. When the trade is complete with a profit
// percentage, the user's stats are recomputed from the full history.
func (s *Service) Record(ctx context.Context, trade *Trade) error {
	if err := s.repo.Insert(ctx, trade); err != nil {
		return err
	}

	if trade.TradeType != TypeComplete || trade.ProfitPct == nil {
		return nil
	}

	all, err := s.repo.AllByUser(ctx, trade.UserID)
	if err != nil {
		return fmt.Errorf("recomputing stats: %w", err)
	}
	return s.repo.SaveStats(ctx, ComputeStats(trade.UserID, all))
}

// Recent returns the user's most recent trades, newest first.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]Trade, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

// Stats returns the user's aggregate stats, or nil when no completed
// trades have been recorded.
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	return s.repo.GetStats(ctx, userID)
}
