package tradev1

import "context"

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=tradev1_mock

// Repository is the persistence contract for trades.
type Repository interface {
	// Store persists an executed trade.
	Store(ctx context.Context, trade *Trade) error
	// List lists trades matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]*Trade, error)
}

// Notifier publishes trade feed events. Delivery failures never fail the
// trade that triggered them.
type Notifier interface {
	// PublishTradeExecuted publishes a trade feed event.
	PublishTradeExecuted(ctx context.Context, event *ExecutedEvent) error
}
