package order

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	orderv1 "github.com/muhammadchandra19/marketplace/internal/domain/order/v1"
	"github.com/muhammadchandra19/marketplace/pkg/errors"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
	"github.com/muhammadchandra19/marketplace/pkg/postgresql"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, product_id, side, price, volume, filled, status, created_at, updated_at`

// repository is the PostgreSQL repository for orders.
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

// Store stores an order.
func (r *repository) Store(ctx context.Context, order *orderv1.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	cmd, err := r.db.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.ProductID,
		order.Side,
		order.Price,
		order.Volume,
		order.Filled,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	r.logger.InfoContext(ctx, "Inserted order", logger.Field{
		Key:   "commandTag",
		Value: cmd.String(),
	})

	return nil
}

// GetByID gets an order by ID.
func (r *repository) GetByID(ctx context.Context, id string) (*orderv1.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order := &orderv1.Order{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.ProductID,
		&order.Side,
		&order.Price,
		&order.Volume,
		&order.Filled,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NewErrorDetails("order not found", string(errors.OrderNotFound), "id")
	}
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	return order, nil
}

// List lists orders.
func (r *repository) List(ctx context.Context, filter orderv1.Filter) ([]*orderv1.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	argIndex := 1

	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argIndex)
		args = append(args, filter.UserID)
		argIndex++
	}

	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", argIndex)
		args = append(args, filter.ProductID)
		argIndex++
	}

	if filter.Side != "" {
		query += fmt.Sprintf(" AND side = $%d", argIndex)
		args = append(args, filter.Side)
		argIndex++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
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

	if filter.SortDirection != "" {
		query += fmt.Sprintf(" ORDER BY created_at %s", filter.SortDirection)
	} else {
		query += " ORDER BY created_at DESC"
	}

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

	return scanOrders(rows)
}

// FindResting returns open orders a taker at takerPrice can trade against.
// Best price first, then oldest first, so a single forward pass respects
// price-time priority.
func (r *repository) FindResting(ctx context.Context, productID string, side orderv1.Side, takerPrice decimal.Decimal, excludeUserID string) ([]*orderv1.Order, error) {
	priceBound := "<="
	priceOrder := "ASC"
	if side == orderv1.SideBuy {
		priceBound = ">="
		priceOrder = "DESC"
	}

	query := fmt.Sprintf(`SELECT `+orderColumns+`
		FROM orders
		WHERE product_id = $1
		  AND side = $2
		  AND status IN ('PENDING', 'PARTIALLY_FILLED')
		  AND user_id <> $3
		  AND price %s $4
		ORDER BY price %s, created_at ASC`, priceBound, priceOrder)

	rows, err := r.db.Query(ctx, query, productID, side, excludeUserID, takerPrice)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// ApplyFill adds delta to the order's filled volume. The update is guarded
// by the fill level the caller last observed, so a concurrent fill makes
// the statement match zero rows instead of over-filling.
func (r *repository) ApplyFill(ctx context.Context, orderID string, expectedFilled, delta int64) error {
	query := `UPDATE orders
		SET filled = filled + $3,
		    status = CASE WHEN filled + $3 >= volume THEN 'FILLED' ELSE 'PARTIALLY_FILLED' END,
		    updated_at = NOW()
		WHERE id = $1
		  AND filled = $2
		  AND filled + $3 <= volume
		  AND status IN ('PENDING', 'PARTIALLY_FILLED')`

	cmd, err := r.db.Exec(ctx, query, orderID, expectedFilled, delta)
	if err != nil {
		return errors.TracerFromError(err)
	}

	if cmd.RowsAffected() == 0 {
		return errors.NewErrorDetails(
			"order was modified concurrently",
			string(errors.OrderConcurrentModification),
			"filled",
		)
	}

	return nil
}

// MarkCancelled transitions an open order to CANCELLED.
func (r *repository) MarkCancelled(ctx context.Context, orderID string) error {
	query := `UPDATE orders
		SET status = 'CANCELLED', updated_at = NOW()
		WHERE id = $1 AND status IN ('PENDING', 'PARTIALLY_FILLED')`

	cmd, err := r.db.Exec(ctx, query, orderID)
	if err != nil {
		return errors.TracerFromError(err)
	}

	if cmd.RowsAffected() > 0 {
		return nil
	}

	// Zero rows means the order is terminal or missing, look at which.
	var status orderv1.Status
	err = r.db.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&status)
	if err == pgx.ErrNoRows {
		return errors.NewErrorDetails("order not found", string(errors.OrderNotFound), "id")
	}
	if err != nil {
		return errors.TracerFromError(err)
	}

	return errors.NewErrorDetailsWithObject(
		"order can no longer be cancelled",
		string(errors.OrderNotCancellable),
		"status",
		status,
	)
}

func scanOrders(rows postgresql.RowsInterface) ([]*orderv1.Order, error) {
	orders := []*orderv1.Order{}
	for rows.Next() {
		order := &orderv1.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.ProductID,
			&order.Side,
			&order.Price,
			&order.Volume,
			&order.Filled,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return orders, nil
}
