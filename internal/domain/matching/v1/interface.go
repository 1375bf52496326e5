package matchingv1

import (
	"context"

	orderv1 "github.com/muhammadchandra19/marketplace/internal/domain/order/v1"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=matchingv1_mock

// Engine matches one taker order against the resting book of its product.
// Implementations assume calls for the same product are already serialized.
type Engine interface {
	// Match runs a single greedy price-time priority pass for the taker.
	// The taker must already be persisted. A *PartialMatchError is returned
	// when a repository failure interrupts the pass.
	Match(ctx context.Context, taker *orderv1.Order) (*Result, error)
}

// Dispatcher serializes matching per product. Orders for different
// products run concurrently, orders for the same product run one at a
// time in submission order.
type Dispatcher interface {
	// Submit enqueues the taker on its product's worker and waits for the
	// matching pass to finish.
	Submit(ctx context.Context, taker *orderv1.Order) (*Result, error)
	// Cancel runs a cancellation on the product worker so it cannot
	// interleave with a matching pass for the same product.
	Cancel(ctx context.Context, productID, orderID string) error
	// Close stops all workers and waits for in-flight work to finish.
	Close()
}
