package trade

import (
	"context"

	tradev1 "github.com/muhammadchandra19/marketplace/internal/domain/trade/v1"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
)

// Usecase exposes trade history lookups.
type Usecase struct {
	trades tradev1.Repository
	logger logger.Interface
}

// NewUsecase creates a new trade usecase.
func NewUsecase(trades tradev1.Repository, log logger.Interface) *Usecase {
	return &Usecase{
		trades: trades,
		logger: log,
	}
}

// GetProductTrades lists trades for a product, newest first.
func (u *Usecase) GetProductTrades(ctx context.Context, productID string, limit, offset int) ([]*tradev1.Trade, error) {
	return u.trades.List(ctx, tradev1.Filter{
		ProductID: productID,
		Limit:     limit,
		Offset:    offset,
	})
}

// GetUserTrades lists trades a user took part in, on either side.
func (u *Usecase) GetUserTrades(ctx context.Context, userID string, limit, offset int) ([]*tradev1.Trade, error) {
	return u.trades.List(ctx, tradev1.Filter{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
}
