package orderv1

import (
	"testing"

	"github.com/muhammadchandra19/marketplace/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name   string
		filled int64
		volume int64
		want   Status
	}{
		{
			name:   "no fills is pending",
			filled: 0,
			volume: 10,
			want:   StatusPending,
		},
		{
			name:   "partial fill",
			filled: 4,
			volume: 10,
			want:   StatusPartiallyFilled,
		},
		{
			name:   "complete fill",
			filled: 10,
			volume: 10,
			want:   StatusFilled,
		},
		{
			name:   "single unit order filled",
			filled: 1,
			volume: 1,
			want:   StatusFilled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.filled, tt.volume))
		})
	}
}

func TestOrderCrosses(t *testing.T) {
	tests := []struct {
		name       string
		side       Side
		takerPrice string
		makerPrice string
		want       bool
	}{
		{
			name:       "buy taker crosses cheaper sell",
			side:       SideBuy,
			takerPrice: "100",
			makerPrice: "95",
			want:       true,
		},
		{
			name:       "buy taker crosses equal priced sell",
			side:       SideBuy,
			takerPrice: "100",
			makerPrice: "100",
			want:       true,
		},
		{
			name:       "buy taker does not cross more expensive sell",
			side:       SideBuy,
			takerPrice: "100",
			makerPrice: "100.01",
			want:       false,
		},
		{
			name:       "sell taker crosses higher bid",
			side:       SideSell,
			takerPrice: "50",
			makerPrice: "55",
			want:       true,
		},
		{
			name:       "sell taker does not cross lower bid",
			side:       SideSell,
			takerPrice: "50",
			makerPrice: "49.99",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taker := &Order{
				Side:  tt.side,
				Price: decimal.RequireFromString(tt.takerPrice),
			}

			assert.Equal(t, tt.want, taker.Crosses(decimal.RequireFromString(tt.makerPrice)))
		})
	}
}

func TestOrderCanCancel(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{name: "pending order", status: StatusPending, want: true},
		{name: "partially filled order", status: StatusPartiallyFilled, want: true},
		{name: "filled order", status: StatusFilled, want: false},
		{name: "cancelled order", status: StatusCancelled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{Status: tt.status}
			assert.Equal(t, tt.want, order.CanCancel())
		})
	}
}

func TestPlaceOrderRequestValidate(t *testing.T) {
	valid := func() *PlaceOrderRequest {
		return &PlaceOrderRequest{
			UserID:    "user-1",
			ProductID: "product-1",
			Side:      SideBuy,
			Price:     decimal.RequireFromString("10.50"),
			Volume:    3,
		}
	}

	tests := []struct {
		name      string
		mutate    func(req *PlaceOrderRequest)
		wantField string
	}{
		{
			name:   "valid request",
			mutate: func(req *PlaceOrderRequest) {},
		},
		{
			name:      "missing user",
			mutate:    func(req *PlaceOrderRequest) { req.UserID = "" },
			wantField: "userID",
		},
		{
			name:      "missing product",
			mutate:    func(req *PlaceOrderRequest) { req.ProductID = "" },
			wantField: "productID",
		},
		{
			name:      "unknown side",
			mutate:    func(req *PlaceOrderRequest) { req.Side = "HOLD" },
			wantField: "side",
		},
		{
			name:      "zero price",
			mutate:    func(req *PlaceOrderRequest) { req.Price = decimal.Zero },
			wantField: "price",
		},
		{
			name:      "negative price",
			mutate:    func(req *PlaceOrderRequest) { req.Price = decimal.RequireFromString("-1") },
			wantField: "price",
		},
		{
			name:      "zero volume",
			mutate:    func(req *PlaceOrderRequest) { req.Volume = 0 },
			wantField: "volume",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)

			err := req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.OrderValidationError))

			base, ok := err.(*errors.BaseError)
			require.True(t, ok)

			fields := make([]string, 0, len(base.GetDetails()))
			for _, detail := range base.GetDetails() {
				fields = append(fields, detail.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestPlaceOrderRequestValidateCollectsAllViolations(t *testing.T) {
	req := &PlaceOrderRequest{}

	err := req.Validate()
	require.Error(t, err)

	base, ok := err.(*errors.BaseError)
	require.True(t, ok)
	assert.Len(t, base.GetDetails(), 5)
}

func TestNewOrder(t *testing.T) {
	req := &PlaceOrderRequest{
		UserID:    "user-1",
		ProductID: "product-1",
		Side:      SideSell,
		Price:     decimal.RequireFromString("42"),
		Volume:    7,
	}

	order := NewOrder(req)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, req.UserID, order.UserID)
	assert.Equal(t, req.ProductID, order.ProductID)
	assert.Equal(t, req.Side, order.Side)
	assert.True(t, req.Price.Equal(order.Price))
	assert.Equal(t, int64(7), order.Volume)
	assert.Equal(t, int64(0), order.Filled)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, int64(7), order.Remaining())
}
