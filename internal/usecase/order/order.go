package order

import (
	"context"

	matchingv1 "github.com/muhammadchandra19/marketplace/internal/domain/matching/v1"
	orderv1 "github.com/muhammadchandra19/marketplace/internal/domain/order/v1"
	productv1 "github.com/muhammadchandra19/marketplace/internal/domain/product/v1"
	"github.com/muhammadchandra19/marketplace/pkg/errors"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
	"github.com/muhammadchandra19/marketplace/pkg/util"
)

//go:generate mockgen -source=order.go -destination=mock/order_mock.go -package=order_mock

// ProductGetter resolves a product by ID. Satisfied by the product
// usecase so lookups go through its cache.
type ProductGetter interface {
	GetProduct(ctx context.Context, id string) (*productv1.Product, error)
}

// Usecase handles order placement, cancellation and listing. Placement
// persists the order first, then hands it to the dispatcher so matching
// for the product stays serialized.
type Usecase struct {
	orders     orderv1.Repository
	products   ProductGetter
	dispatcher matchingv1.Dispatcher
	logger     logger.Interface
}

// NewUsecase creates a new order usecase.
func NewUsecase(
	orders orderv1.Repository,
	products ProductGetter,
	dispatcher matchingv1.Dispatcher,
	log logger.Interface,
) *Usecase {
	return &Usecase{
		orders:     orders,
		products:   products,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// PlaceOrder validates and persists a new order, then runs one matching
// pass for it. On a partial matching failure the trades that did execute
// are returned alongside the error.
//
// Placement is idempotent on the request id: when the context carries
// one it becomes the order id, and a redelivery of the same request
// resumes the already stored order instead of booking its volume twice.
func (u *Usecase) PlaceOrder(ctx context.Context, req *orderv1.PlaceOrderRequest) (*matchingv1.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := u.products.GetProduct(ctx, req.ProductID); err != nil {
		if errors.HasCode(err, errors.ProductNotFound) {
			return nil, errors.NewErrorDetails(
				"unknown product",
				string(errors.OrderValidationError),
				"productID",
			)
		}
		return nil, err
	}

	order := orderv1.NewOrder(req)
	if requestID := util.GetRequestID(ctx); requestID != "" {
		existing, err := u.orders.GetByID(ctx, requestID)
		switch {
		case err == nil:
			return u.resume(ctx, existing)
		case !errors.HasCode(err, errors.OrderNotFound):
			return nil, err
		}
		order.ID = requestID
	}

	if err := u.orders.Store(ctx, order); err != nil {
		return nil, err
	}

	u.logger.InfoContext(ctx, "Order accepted",
		logger.Field{Key: "orderID", Value: order.ID},
		logger.Field{Key: "productID", Value: order.ProductID},
		logger.Field{Key: "side", Value: order.Side},
	)

	result, err := u.dispatcher.Submit(ctx, order)
	if err != nil {
		u.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "orderID",
			Value: order.ID,
		})
		// The order is persisted either way, surface what did execute.
		return result, err
	}

	return result, nil
}

// resume picks up an order a previous delivery already stored. An open
// remainder gets another matching pass, a settled order is returned
// as-is.
func (u *Usecase) resume(ctx context.Context, order *orderv1.Order) (*matchingv1.Result, error) {
	u.logger.InfoContext(ctx, "Order already stored, resuming",
		logger.Field{Key: "orderID", Value: order.ID},
		logger.Field{Key: "status", Value: order.Status},
	)

	if !order.CanCancel() || order.Remaining() <= 0 {
		return &matchingv1.Result{
			Taker:           order,
			RemainingVolume: order.Remaining(),
		}, nil
	}

	return u.dispatcher.Submit(ctx, order)
}

// CancelOrder cancels an open order owned by the requesting user. The
// cancellation runs on the product worker so it cannot interleave with a
// matching pass that is filling the same order.
func (u *Usecase) CancelOrder(ctx context.Context, req *orderv1.CancelOrderRequest) error {
	order, err := u.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return err
	}

	if order.UserID != req.UserID {
		return errors.NewErrorDetails(
			"order does not belong to user",
			string(errors.OrderNotCancellable),
			"userID",
		)
	}

	if !order.CanCancel() {
		return errors.NewErrorDetailsWithObject(
			"order can no longer be cancelled",
			string(errors.OrderNotCancellable),
			"status",
			order.Status,
		)
	}

	if err := u.dispatcher.Cancel(ctx, order.ProductID, order.ID); err != nil {
		return err
	}

	u.logger.InfoContext(ctx, "Order cancelled",
		logger.Field{Key: "orderID", Value: order.ID},
		logger.Field{Key: "productID", Value: order.ProductID},
	)

	return nil
}

// GetOrder gets a single order by ID.
func (u *Usecase) GetOrder(ctx context.Context, orderID string) (*orderv1.Order, error) {
	return u.orders.GetByID(ctx, orderID)
}

// GetUserOrders lists a user's orders, newest first.
func (u *Usecase) GetUserOrders(ctx context.Context, userID string, filter orderv1.Filter) ([]*orderv1.Order, error) {
	filter.UserID = userID
	return u.orders.List(ctx, filter)
}
