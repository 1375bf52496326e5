package productv1

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Product represents a commodity listed on the marketplace.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	AvgPrice  decimal.Decimal `json:"avgPrice"`
	Image     string          `json:"image,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewProduct creates a product with a fresh ID.
func NewProduct(name string, avgPrice decimal.Decimal, image string) *Product {
	return &Product{
		ID:        ulid.Make().String(),
		Name:      name,
		AvgPrice:  avgPrice,
		Image:     image,
		CreatedAt: time.Now().UTC(),
	}
}
