package trade

import (
	"context"
	"fmt"

	tradev1 "github.com/muhammadchandra19/marketplace/internal/domain/trade/v1"
	"github.com/muhammadchandra19/marketplace/pkg/errors"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
	"github.com/muhammadchandra19/marketplace/pkg/postgresql"
)

const tradeColumns = `id, product_id, price, volume, buyer_id, seller_id, created_at`

// repository is the PostgreSQL repository for trades.
type repository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

// NewRepository creates a new repository.
func NewRepository(db postgresql.PostgreSQLClient, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// Store persists an executed trade.
func (r *repository) Store(ctx context.Context, trade *tradev1.Trade) error {
	query := `INSERT INTO trades (` + tradeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	cmd, err := r.db.Exec(ctx, query,
		trade.ID,
		trade.ProductID,
		trade.Price,
		trade.Volume,
		trade.BuyerID,
		trade.SellerID,
		trade.CreatedAt,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	r.logger.InfoContext(ctx, "Inserted trade", logger.Field{
		Key:   "commandTag",
		Value: cmd.String(),
	})

	return nil
}

// List lists trades, newest first.
func (r *repository) List(ctx context.Context, filter tradev1.Filter) ([]*tradev1.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE 1=1`
	args := []any{}
	argIndex := 1

	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", argIndex)
		args = append(args, filter.ProductID)
		argIndex++
	}

	if filter.UserID != "" {
		query += fmt.Sprintf(" AND (buyer_id = $%d OR seller_id = $%d)", argIndex, argIndex)
		args = append(args, filter.UserID)
		argIndex++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *filter.From)
		argIndex++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *filter.To)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
		argIndex++
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	trades := []*tradev1.Trade{}
	for rows.Next() {
		trade := &tradev1.Trade{}
		err := rows.Scan(
			&trade.ID,
			&trade.ProductID,
			&trade.Price,
			&trade.Volume,
			&trade.BuyerID,
			&trade.SellerID,
			&trade.CreatedAt,
		)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return trades, nil
}
