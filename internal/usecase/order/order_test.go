package order

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/golang/mock/gomock"
	matchingv1 "github.com/muhammadchandra19/marketplace/internal/domain/matching/v1"
	matchingMock "github.com/muhammadchandra19/marketplace/internal/domain/matching/v1/mock"
	orderv1 "github.com/muhammadchandra19/marketplace/internal/domain/order/v1"
	orderMock "github.com/muhammadchandra19/marketplace/internal/domain/order/v1/mock"
	productv1 "github.com/muhammadchandra19/marketplace/internal/domain/product/v1"
	usecaseMock "github.com/muhammadchandra19/marketplace/internal/usecase/order/mock"
	"github.com/muhammadchandra19/marketplace/pkg/errors"
	mockLogger "github.com/muhammadchandra19/marketplace/pkg/logger/mock"
	"github.com/muhammadchandra19/marketplace/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usecaseMocks struct {
	orders     *orderMock.MockRepository
	products   *usecaseMock.MockProductGetter
	dispatcher *matchingMock.MockDispatcher
}

func newUsecaseForTest(t *testing.T) (*Usecase, *usecaseMocks) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := &usecaseMocks{
		orders:     orderMock.NewMockRepository(ctrl),
		products:   usecaseMock.NewMockProductGetter(ctrl),
		dispatcher: matchingMock.NewMockDispatcher(ctrl),
	}

	log := mockLogger.NewMockInterface(ctrl)
	log.EXPECT().InfoContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().ErrorContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	return NewUsecase(m.orders, m.products, m.dispatcher, log), m
}

func placeRequest() *orderv1.PlaceOrderRequest {
	return &orderv1.PlaceOrderRequest{
		UserID:    "user-1",
		ProductID: "product-1",
		Side:      orderv1.SideBuy,
		Price:     decimal.RequireFromString("100"),
		Volume:    5,
	}
}

func TestUsecase_PlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("places and matches", func(t *testing.T) {
		usecase, m := newUsecaseForTest(t)

		m.products.EXPECT().GetProduct(ctx, "product-1").Return(&productv1.Product{ID: "product-1"}, nil)

		var stored *orderv1.Order
		m.orders.EXPECT().Store(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, order *orderv1.Order) error {
				stored = order
				return nil
			})

		m.dispatcher.EXPECT().Submit(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, taker *orderv1.Order) (*matchingv1.Result, error) {
				assert.Equal(t, stored, taker)
				return &matchingv1.Result{Taker: taker, RemainingVolume: taker.Remaining()}, nil
			})

		result, err := usecase.PlaceOrder(ctx, placeRequest())
		require.NoError(t, err)

		require.NotNil(t, stored)
		assert.Equal(t, orderv1.StatusPending, stored.Status)
		assert.Equal(t, int64(5), result.RemainingVolume)
	})

	t.Run("rejects invalid request", func(t *testing.T) {
		usecase, _ := newUsecaseForTest(t)

		req := placeRequest()
		req.Volume = 0

		_, err := usecase.PlaceOrder(ctx, req)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.OrderValidationError))
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		usecase, m := newUsecaseForTest(t)

		m.products.EXPECT().GetProduct(ctx, "product-1").
			Return(nil, errors.NewErrorDetails("product not found", string(errors.ProductNotFound), "id"))

		_, err := usecase.PlaceOrder(ctx, placeRequest())
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.OrderValidationError))
	})

	t.Run("surfaces partial match result with error", func(t *testing.T) {
		usecase, m := newUsecaseForTest(t)

		m.products.EXPECT().GetProduct(ctx, "product-1").Return(&productv1.Product{ID: "product-1"}, nil)
		m.orders.EXPECT().Store(ctx, gomock.Any()).Return(nil)

		partial := &matchingv1.PartialMatchError{Err: stderrors.New("connection refused")}
		m.dispatcher.EXPECT().Submit(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, taker *orderv1.Order) (*matchingv1.Result, error) {
				result := &matchingv1.Result{Taker: taker, RemainingVolume: taker.Remaining()}
				partial.Result = result
				return result, partial
			})

		result, err := usecase.PlaceOrder(ctx, placeRequest())
		require.Error(t, err)
		assert.NotNil(t, result)

		var pm *matchingv1.PartialMatchError
		assert.True(t, stderrors.As(err, &pm))
	})
}

func TestUsecase_PlaceOrder_IdempotentOnRequestID(t *testing.T) {
	ctx := util.WithRequestID(context.Background(), "req-1")
	notFound := errors.NewErrorDetails("order not found", string(errors.OrderNotFound), "id")

	t.Run("request id becomes the order id", func(t *testing.T) {
		usecase, m := newUsecaseForTest(t)

		m.products.EXPECT().GetProduct(ctx, "product-1").Return(&productv1.Product{ID: "product-1"}, nil)
		m.orders.EXPECT().GetByID(ctx, "req-1").Return(nil, notFound)

		m.orders.EXPECT().Store(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, order *orderv1.Order) error {
				assert.Equal(t, "req-1", order.ID)
				return nil
			})
		m.dispatcher.EXPECT().Submit(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, taker *orderv1.Order) (*matchingv1.Result, error) {
				return &matchingv1.Result{Taker: taker, RemainingVolume: taker.Remaining()}, nil
			})

		_, err := usecase.PlaceOrder(ctx, placeRequest())
		require.NoError(t, err)
	})

	t.Run("redelivery resumes the stored order without a second store", func(t *testing.T) {
		usecase, m := newUsecaseForTest(t)

		existing := &orderv1.Order{
			ID:        "req-1",
			UserID:    "user-1",
			ProductID: "product-1",
			Side:      orderv1.SideBuy,
			Price:     decimal.RequireFromString("100"),
			Volume:    5,
			Filled:    2,
			Status:    orderv1.StatusPartiallyFilled,
		}

		m.products.EXPECT().GetProduct(ctx, "product-1").Return(&productv1.Product{ID: "product-1"}, nil)
		m.orders.EXPECT().GetByID(ctx, "req-1").Return(existing, nil)

		m.dispatcher.EXPECT().Submit(ctx, existing).
			Return(&matchingv1.Result{Taker: existing, RemainingVolume: existing.Remaining()}, nil)

		result, err := usecase.PlaceOrder(ctx, placeRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.RemainingVolume)
	})

	t.Run("redelivery of a settled order books nothing", func(t *testing.T) {
		usecase, m := newUsecaseForTest(t)

		existing := &orderv1.Order{
			ID:        "req-1",
			UserID:    "user-1",
			ProductID: "product-1",
			Side:      orderv1.SideBuy,
			Price:     decimal.RequireFromString("100"),
			Volume:    5,
			Filled:    5,
			Status:    orderv1.StatusFilled,
		}

		m.products.EXPECT().GetProduct(ctx, "product-1").Return(&productv1.Product{ID: "product-1"}, nil)
		m.orders.EXPECT().GetByID(ctx, "req-1").Return(existing, nil)

		result, err := usecase.PlaceOrder(ctx, placeRequest())
		require.NoError(t, err)
		assert.Equal(t, existing, result.Taker)
		assert.Equal(t, int64(0), result.RemainingVolume)
	})
}

func TestUsecase_CancelOrder(t *testing.T) {
	ctx := context.Background()

	open := func() *orderv1.Order {
		return &orderv1.Order{
			ID:        "order-1",
			UserID:    "user-1",
			ProductID: "product-1",
			Status:    orderv1.StatusPartiallyFilled,
		}
	}

	t.Run("cancels open order via dispatcher", func(t *testing.T) {
		usecase, m := newUsecaseForTest(t)

		m.orders.EXPECT().GetByID(ctx, "order-1").Return(open(), nil)
		m.dispatcher.EXPECT().Cancel(ctx, "product-1", "order-1").Return(nil)

		err := usecase.CancelOrder(ctx, &orderv1.CancelOrderRequest{OrderID: "order-1", UserID: "user-1"})
		assert.NoError(t, err)
	})

	t.Run("rejects foreign order", func(t *testing.T) {
		usecase, m := newUsecaseForTest(t)

		m.orders.EXPECT().GetByID(ctx, "order-1").Return(open(), nil)

		err := usecase.CancelOrder(ctx, &orderv1.CancelOrderRequest{OrderID: "order-1", UserID: "intruder"})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.OrderNotCancellable))
	})

	t.Run("rejects filled order", func(t *testing.T) {
		usecase, m := newUsecaseForTest(t)

		filled := open()
		filled.Status = orderv1.StatusFilled
		m.orders.EXPECT().GetByID(ctx, "order-1").Return(filled, nil)

		err := usecase.CancelOrder(ctx, &orderv1.CancelOrderRequest{OrderID: "order-1", UserID: "user-1"})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.OrderNotCancellable))
	})

	t.Run("unknown order", func(t *testing.T) {
		usecase, m := newUsecaseForTest(t)

		m.orders.EXPECT().GetByID(ctx, "order-1").
			Return(nil, errors.NewErrorDetails("order not found", string(errors.OrderNotFound), "id"))

		err := usecase.CancelOrder(ctx, &orderv1.CancelOrderRequest{OrderID: "order-1", UserID: "user-1"})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.OrderNotFound))
	})
}

func TestUsecase_GetUserOrders(t *testing.T) {
	ctx := context.Background()
	usecase, m := newUsecaseForTest(t)

	m.orders.EXPECT().
		List(ctx, orderv1.Filter{UserID: "user-1", Status: orderv1.StatusPending}).
		Return([]*orderv1.Order{{ID: "order-1"}}, nil)

	orders, err := usecase.GetUserOrders(ctx, "user-1", orderv1.Filter{Status: orderv1.StatusPending})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
