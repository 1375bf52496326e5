package productv1

import "context"

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=productv1_mock

// Repository is the persistence contract for products.
type Repository interface {
	// Store persists a new product.
	Store(ctx context.Context, product *Product) error
	// GetByID gets a product by ID. Returns a product_not_found error when
	// no product matches.
	GetByID(ctx context.Context, id string) (*Product, error)
	// List lists all products, newest first.
	List(ctx context.Context, limit, offset int) ([]*Product, error)
}
