package orderv1

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Side represents which side of the book an order sits on.
type Side string

const (
	// SideBuy represents a buy order.
	SideBuy Side = "BUY"
	// SideSell represents a sell order.
	SideSell Side = "SELL"
)

// Status represents the lifecycle status of an order. It is always
// derived from the filled volume, never set directly.
type Status string

const (
	// StatusPending is the status of an order with no fills yet.
	StatusPending Status = "PENDING"

	// StatusPartiallyFilled is the status of an order with some volume filled.
	StatusPartiallyFilled Status = "PARTIALLY_FILLED"

	// StatusFilled is the status of a completely filled order. Terminal.
	StatusFilled Status = "FILLED"

	// StatusCancelled is the status of a cancelled order. Terminal.
	StatusCancelled Status = "CANCELLED"
)

// Order represents a single order in the marketplace.
type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userID"`
	ProductID string          `json:"productID"`
	Side      Side            `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Volume    int64           `json:"volume"`
	Filled    int64           `json:"filled"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewOrder creates a resting order from a validated request.
func NewOrder(req *PlaceOrderRequest) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:        ulid.Make().String(),
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Side:      req.Side,
		Price:     req.Price,
		Volume:    req.Volume,
		Filled:    0,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DeriveStatus maps a fill level to the order status.
func DeriveStatus(filled, volume int64) Status {
	switch {
	case filled <= 0:
		return StatusPending
	case filled < volume:
		return StatusPartiallyFilled
	default:
		return StatusFilled
	}
}

// Remaining returns the unfilled volume of the order.
func (o *Order) Remaining() int64 {
	return o.Volume - o.Filled
}

// IsBuy checks if the order is on the buy side.
func (o *Order) IsBuy() bool {
	return o.Side == SideBuy
}

// IsSell checks if the order is on the sell side.
func (o *Order) IsSell() bool {
	return o.Side == SideSell
}

// IsFilled checks if the order is completely filled.
func (o *Order) IsFilled() bool {
	return o.Filled >= o.Volume
}

// CanCancel reports whether the order may still be cancelled.
// Terminal statuses cannot be cancelled.
func (o *Order) CanCancel() bool {
	return o.Status == StatusPending || o.Status == StatusPartiallyFilled
}

// OppositeSide returns the side this order trades against.
func (o *Order) OppositeSide() Side {
	if o.Side == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Crosses reports whether a resting order at makerPrice is price
// compatible with this order acting as the taker.
func (o *Order) Crosses(makerPrice decimal.Decimal) bool {
	if o.Side == SideBuy {
		return makerPrice.LessThanOrEqual(o.Price)
	}
	return makerPrice.GreaterThanOrEqual(o.Price)
}

// Filter represents the filter criteria for listing orders.
type Filter struct {
	UserID        string     `json:"userID"`
	ProductID     string     `json:"productID"`
	Side          Side       `json:"side"`
	Status        Status     `json:"status"`
	From          *time.Time `json:"from"`
	To            *time.Time `json:"to"`
	Limit         int        `json:"limit"`
	Offset        int        `json:"offset"`
	SortDirection string     `json:"sortDirection"`
}
