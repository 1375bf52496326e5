package orderv1

import (
	"encoding/json"

	"github.com/muhammadchandra19/marketplace/pkg/errors"
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest represents a request to place an order.
type PlaceOrderRequest struct {
	UserID    string          `json:"userID"`
	ProductID string          `json:"productID"`
	Side      Side            `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Volume    int64           `json:"volume"`
}

// Validate checks the request fields. All violations are collected so a
// caller sees every problem at once.
func (r *PlaceOrderRequest) Validate() error {
	base := errors.NewBaseError()

	if r.UserID == "" {
		base.AddErrorDetails(errors.NewErrorDetails(
			"user id is required",
			string(errors.OrderValidationError),
			"userID",
		))
	}

	if r.ProductID == "" {
		base.AddErrorDetails(errors.NewErrorDetails(
			"product id is required",
			string(errors.OrderValidationError),
			"productID",
		))
	}

	if r.Side != SideBuy && r.Side != SideSell {
		base.AddErrorDetails(errors.NewErrorDetails(
			"side must be BUY or SELL",
			string(errors.OrderValidationError),
			"side",
		))
	}

	if !r.Price.IsPositive() {
		base.AddErrorDetails(errors.NewErrorDetails(
			"price must be positive",
			string(errors.OrderValidationError),
			"price",
		))
	}

	if r.Volume <= 0 {
		base.AddErrorDetails(errors.NewErrorDetails(
			"volume must be a positive integer",
			string(errors.OrderValidationError),
			"volume",
		))
	}

	if len(base.GetDetails()) > 0 {
		return base
	}

	return nil
}

// CancelOrderRequest represents a request to cancel a resting order.
type CancelOrderRequest struct {
	OrderID string `json:"orderID"`
	UserID  string `json:"userID"`
}

// ToBytes converts the request to a byte array.
func (r *PlaceOrderRequest) ToBytes() []byte {
	data, err := json.Marshal(r)
	if err != nil {
		return nil
	}

	return data
}

// FromBytes parses a byte array into a place order request.
func FromBytes(data []byte) (*PlaceOrderRequest, error) {
	var req PlaceOrderRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.TracerFromError(err)
	}
	return &req, nil
}
