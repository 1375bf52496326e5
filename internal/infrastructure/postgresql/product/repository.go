package product

import (
	"context"

	"github.com/jackc/pgx/v5"
	productv1 "github.com/muhammadchandra19/marketplace/internal/domain/product/v1"
	"github.com/muhammadchandra19/marketplace/pkg/errors"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
	"github.com/muhammadchandra19/marketplace/pkg/postgresql"
)

const productColumns = `id, name, avg_price, image, created_at`

// repository is the PostgreSQL repository for products.
type repository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

// NewRepository creates a new repository.
func NewRepository(db postgresql.PostgreSQLClient, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// Store persists a new product.
func (r *repository) Store(ctx context.Context, product *productv1.Product) error {
	query := `INSERT INTO products (` + productColumns + `) VALUES ($1, $2, $3, $4, $5)`

	cmd, err := r.db.Exec(ctx, query,
		product.ID,
		product.Name,
		product.AvgPrice,
		product.Image,
		product.CreatedAt,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	r.logger.InfoContext(ctx, "Inserted product", logger.Field{
		Key:   "commandTag",
		Value: cmd.String(),
	})

	return nil
}

// GetByID gets a product by ID.
func (r *repository) GetByID(ctx context.Context, id string) (*productv1.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product := &productv1.Product{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.AvgPrice,
		&product.Image,
		&product.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NewErrorDetails("product not found", string(errors.ProductNotFound), "id")
	}
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	return product, nil
}

// List lists products, newest first.
func (r *repository) List(ctx context.Context, limit, offset int) ([]*productv1.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	args := []any{}

	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)

		if offset > 0 {
			query += " OFFSET $2"
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	products := []*productv1.Product{}
	for rows.Next() {
		product := &productv1.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.AvgPrice,
			&product.Image,
			&product.CreatedAt,
		)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return products, nil
}
