package matching

import (
	"context"
	stderrors "errors"
	"time"

	matchingv1 "github.com/muhammadchandra19/marketplace/internal/domain/matching/v1"
	orderv1 "github.com/muhammadchandra19/marketplace/internal/domain/order/v1"
	tradev1 "github.com/muhammadchandra19/marketplace/internal/domain/trade/v1"
	"github.com/muhammadchandra19/marketplace/pkg/config"
	"github.com/muhammadchandra19/marketplace/pkg/errors"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
)

// Engine runs greedy price-time priority matching. One taker order is
// matched against the resting book in a single forward pass, trading at
// the resting order's price. The caller is responsible for serializing
// calls per product, see Dispatcher.
type Engine struct {
	orders       orderv1.Repository
	trades       tradev1.Repository
	notifier     tradev1.Notifier
	logger       logger.Interface
	queryTimeout time.Duration
}

// NewEngine creates a matching engine.
func NewEngine(
	orders orderv1.Repository,
	trades tradev1.Repository,
	notifier tradev1.Notifier,
	log logger.Interface,
	cfg config.MatchingConfig,
) *Engine {
	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &Engine{
		orders:       orders,
		trades:       trades,
		notifier:     notifier,
		logger:       log,
		queryTimeout: timeout,
	}
}

// Match matches the taker against resting orders of its product.
//
// Candidates are consumed best price first, oldest first. Each pairing
// fills min(taker remaining, maker available) at the maker's price. A
// fill that loses its optimistic guard is retried once against a fresh
// read of the maker, then the maker is skipped. A repository failure
// aborts the pass and surfaces the already-executed trades through a
// *matchingv1.PartialMatchError.
func (e *Engine) Match(ctx context.Context, taker *orderv1.Order) (*matchingv1.Result, error) {
	result := &matchingv1.Result{
		Taker:           taker,
		Trades:          []*tradev1.Trade{},
		RemainingVolume: taker.Remaining(),
	}

	if taker.Remaining() <= 0 || !taker.CanCancel() {
		return nil, errors.NewErrorDetailsWithObject(
			"taker order is not open",
			string(errors.MatchInvariantViolation),
			"status",
			taker.Status,
		)
	}

	candidates, err := e.findResting(ctx, taker)
	if err != nil {
		return result, &matchingv1.PartialMatchError{Result: result, Err: err}
	}

	for _, maker := range candidates {
		if taker.Remaining() <= 0 {
			break
		}

		// The query already filters on price, re-check against the data we
		// actually read before trusting it.
		if !taker.Crosses(maker.Price) || maker.UserID == taker.UserID {
			e.logger.WarnContext(ctx, "Skipping ineligible match candidate",
				logger.Field{Key: "takerID", Value: taker.ID},
				logger.Field{Key: "makerID", Value: maker.ID},
			)
			continue
		}

		tradeVolume := min(taker.Remaining(), maker.Remaining())
		if tradeVolume <= 0 {
			continue
		}

		maker, tradeVolume, err = e.fillMaker(ctx, taker, maker, tradeVolume)
		if err != nil {
			if errors.HasCode(err, errors.OrderConcurrentModification) {
				// Lost the race twice, leave this maker to whoever won.
				continue
			}
			return result, &matchingv1.PartialMatchError{Result: result, Err: err}
		}
		if tradeVolume <= 0 {
			continue
		}

		if err := e.fill(ctx, taker.ID, taker.Filled, tradeVolume); err != nil {
			return result, &matchingv1.PartialMatchError{Result: result, Err: err}
		}
		taker.Filled += tradeVolume
		taker.Status = orderv1.DeriveStatus(taker.Filled, taker.Volume)
		taker.UpdatedAt = time.Now().UTC()

		trade, err := e.recordTrade(ctx, taker, maker, tradeVolume)
		if err != nil {
			result.RemainingVolume = taker.Remaining()
			return result, &matchingv1.PartialMatchError{Result: result, Err: err}
		}

		result.Trades = append(result.Trades, trade)
		e.notify(ctx, taker, trade)
	}

	result.RemainingVolume = taker.Remaining()

	e.logger.InfoContext(ctx, "Matching pass finished",
		logger.Field{Key: "takerID", Value: taker.ID},
		logger.Field{Key: "productID", Value: taker.ProductID},
		logger.Field{Key: "trades", Value: len(result.Trades)},
		logger.Field{Key: "remainingVolume", Value: result.RemainingVolume},
	)

	return result, nil
}

func (e *Engine) findResting(ctx context.Context, taker *orderv1.Order) ([]*orderv1.Order, error) {
	queryCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	candidates, err := e.orders.FindResting(queryCtx, taker.ProductID, taker.OppositeSide(), taker.Price, taker.UserID)
	if err != nil {
		return nil, e.classify(queryCtx, err)
	}
	return candidates, nil
}

// fillMaker applies the maker side of a pairing. When the optimistic
// guard fails it re-reads the maker once, recomputes the volume, and
// retries. The returned maker reflects the fill that was applied.
func (e *Engine) fillMaker(ctx context.Context, taker, maker *orderv1.Order, tradeVolume int64) (*orderv1.Order, int64, error) {
	err := e.fill(ctx, maker.ID, maker.Filled, tradeVolume)
	if err == nil {
		return maker, tradeVolume, nil
	}
	if !errors.HasCode(err, errors.OrderConcurrentModification) {
		return maker, 0, err
	}

	e.logger.WarnContext(ctx, "Maker fill lost optimistic guard, retrying once",
		logger.Field{Key: "makerID", Value: maker.ID},
	)

	queryCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	fresh, err := e.orders.GetByID(queryCtx, maker.ID)
	cancel()
	if err != nil {
		if errors.HasCode(err, errors.OrderNotFound) {
			return maker, 0, errors.NewErrorDetails(
				"maker disappeared during matching",
				string(errors.OrderConcurrentModification),
				"id",
			)
		}
		return maker, 0, e.classify(ctx, err)
	}

	if !fresh.CanCancel() || fresh.UserID == taker.UserID || !taker.Crosses(fresh.Price) {
		return maker, 0, nil
	}

	tradeVolume = min(taker.Remaining(), fresh.Remaining())
	if tradeVolume <= 0 {
		return maker, 0, nil
	}

	if err := e.fill(ctx, fresh.ID, fresh.Filled, tradeVolume); err != nil {
		return maker, 0, err
	}
	return fresh, tradeVolume, nil
}

func (e *Engine) fill(ctx context.Context, orderID string, expectedFilled, delta int64) error {
	queryCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	if err := e.orders.ApplyFill(queryCtx, orderID, expectedFilled, delta); err != nil {
		if errors.HasCode(err, errors.OrderConcurrentModification) {
			return err
		}
		return e.classify(queryCtx, err)
	}
	return nil
}

func (e *Engine) recordTrade(ctx context.Context, taker, maker *orderv1.Order, tradeVolume int64) (*tradev1.Trade, error) {
	buyerID, sellerID := taker.UserID, maker.UserID
	if taker.IsSell() {
		buyerID, sellerID = maker.UserID, taker.UserID
	}

	// Maker pricing, the resting order's price wins.
	trade := tradev1.NewTrade(taker.ProductID, maker.Price, tradeVolume, buyerID, sellerID)

	queryCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	if err := e.trades.Store(queryCtx, trade); err != nil {
		return nil, e.classify(queryCtx, err)
	}
	return trade, nil
}

// notify publishes the trade feed event. Delivery failures are logged
// and swallowed, the trade is already committed.
func (e *Engine) notify(ctx context.Context, taker *orderv1.Order, trade *tradev1.Trade) {
	if e.notifier == nil {
		return
	}

	event := tradev1.CreateFromTrade(trade, string(taker.Side))
	if err := e.notifier.PublishTradeExecuted(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "Trade feed notification failed",
			logger.Field{Key: "tradeID", Value: trade.ID},
			logger.Field{Key: "error", Value: err.Error()},
		)
	}
}

// classify maps transport level failures onto the repository error codes
// callers alert on. Deadline expiry becomes repository_timeout, any
// other transport failure becomes repository_unavailable.
func (e *Engine) classify(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewErrorDetails(
			"repository call exceeded its deadline",
			string(errors.RepositoryTimeout),
			"",
		)
	}
	return errors.NewErrorDetailsWithObject(
		"repository is unavailable",
		string(errors.RepositoryUnavailable),
		"",
		err.Error(),
	)
}
