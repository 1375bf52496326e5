package orderv1

import (
	"context"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=orderv1_mock

// Repository is the persistence contract for orders.
type Repository interface {
	// Store persists a new order.
	Store(ctx context.Context, order *Order) error
	// GetByID gets an order by ID.
	GetByID(ctx context.Context, id string) (*Order, error)
	// List lists orders matching the filter.
	List(ctx context.Context, filter Filter) ([]*Order, error)

	// FindResting returns open orders on the given side of a product that are
	// price compatible with a taker at takerPrice, excluding orders owned by
	// excludeUserID. Results are ordered best price first, oldest first
	// within a price level.
	FindResting(ctx context.Context, productID string, side Side, takerPrice decimal.Decimal, excludeUserID string) ([]*Order, error)

	// ApplyFill atomically adds delta to the order's filled volume, guarded by
	// the expected current fill level. Returns an order_concurrent_modification
	// error when the guard does not hold.
	ApplyFill(ctx context.Context, orderID string, expectedFilled, delta int64) error

	// MarkCancelled transitions an open order to CANCELLED. Returns an
	// order_not_cancellable error when the order is already terminal.
	MarkCancelled(ctx context.Context, orderID string) error
}
