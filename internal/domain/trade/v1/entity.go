package tradev1

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Trade represents a single executed trade between two orders.
type Trade struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productID"`
	Price     decimal.Decimal `json:"price"`
	Volume    int64           `json:"volume"`
	BuyerID   string          `json:"buyerID"`
	SellerID  string          `json:"sellerID"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewTrade creates a trade record with a fresh ID.
func NewTrade(productID string, price decimal.Decimal, volume int64, buyerID, sellerID string) *Trade {
	return &Trade{
		ID:        ulid.Make().String(),
		ProductID: productID,
		Price:     price,
		Volume:    volume,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		CreatedAt: time.Now().UTC(),
	}
}

// Filter represents the filter criteria for listing trades.
type Filter struct {
	ProductID string     `json:"productID"`
	UserID    string     `json:"userID"`
	From      *time.Time `json:"from"`
	To        *time.Time `json:"to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

// ExecutedEvent is the trade feed payload published after a trade commits.
type ExecutedEvent struct {
	TradeID    string          `json:"tradeID"`
	ProductID  string          `json:"productID"`
	Price      decimal.Decimal `json:"price"`
	Volume     int64           `json:"volume"`
	BuyerID    string          `json:"buyerID"`
	SellerID   string          `json:"sellerID"`
	TakerSide  string          `json:"takerSide"`
	ExecutedAt time.Time       `json:"executedAt"`
}

// CreateFromTrade creates a trade feed event from an executed trade.
func CreateFromTrade(trade *Trade, takerSide string) *ExecutedEvent {
	return &ExecutedEvent{
		TradeID:    trade.ID,
		ProductID:  trade.ProductID,
		Price:      trade.Price,
		Volume:     trade.Volume,
		BuyerID:    trade.BuyerID,
		SellerID:   trade.SellerID,
		TakerSide:  takerSide,
		ExecutedAt: trade.CreatedAt,
	}
}

// ToBytes converts the event to a byte array.
func (e *ExecutedEvent) ToBytes() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}

	return data
}

// FromBytes converts a byte array to a trade feed event.
func FromBytes(data []byte) *ExecutedEvent {
	var event ExecutedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil
	}
	return &event
}
