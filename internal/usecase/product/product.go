package product

import (
	"context"
	"encoding/json"
	"time"

	productv1 "github.com/muhammadchandra19/marketplace/internal/domain/product/v1"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
	"github.com/muhammadchandra19/marketplace/pkg/redis"
	"github.com/shopspring/decimal"
)

// Usecase handles the product catalog. Reads go through a Redis
// cache-aside layer, the database stays the source of truth and any
// cache failure degrades to a direct read.
type Usecase struct {
	products productv1.Repository
	cache    redis.Client
	logger   logger.Interface
	cacheTTL time.Duration
	prefix   string
}

// NewUsecase creates a new product usecase. cache may be nil, caching is
// then disabled.
func NewUsecase(
	products productv1.Repository,
	cache redis.Client,
	log logger.Interface,
	cacheTTL time.Duration,
	prefix string,
) *Usecase {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Usecase{
		products: products,
		cache:    cache,
		logger:   log,
		cacheTTL: cacheTTL,
		prefix:   prefix,
	}
}

// AddProduct lists a new product on the marketplace.
func (u *Usecase) AddProduct(ctx context.Context, name string, avgPrice decimal.Decimal, image string) (*productv1.Product, error) {
	product := productv1.NewProduct(name, avgPrice, image)

	if err := u.products.Store(ctx, product); err != nil {
		return nil, err
	}

	u.logger.InfoContext(ctx, "Product listed",
		logger.Field{Key: "productID", Value: product.ID},
		logger.Field{Key: "name", Value: product.Name},
	)

	u.writeThrough(ctx, product)

	return product, nil
}

// GetProduct gets a product by ID, preferring the cache.
func (u *Usecase) GetProduct(ctx context.Context, id string) (*productv1.Product, error) {
	if cached := u.fromCache(ctx, id); cached != nil {
		return cached, nil
	}

	product, err := u.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.toCache(ctx, product)

	return product, nil
}

// ListProducts lists products, newest first.
func (u *Usecase) ListProducts(ctx context.Context, limit, offset int) ([]*productv1.Product, error) {
	return u.products.List(ctx, limit, offset)
}

func (u *Usecase) cacheKey(id string) string {
	return u.prefix + "product:" + id
}

func (u *Usecase) fromCache(ctx context.Context, id string) *productv1.Product {
	if u.cache == nil {
		return nil
	}

	raw, err := u.cache.Get(ctx, u.cacheKey(id))
	if err != nil {
		u.logger.WarnContext(ctx, "Product cache read failed", logger.Field{
			Key:   "productID",
			Value: id,
		})
		return nil
	}
	if raw == "" {
		return nil
	}

	product := &productv1.Product{}
	if err := json.Unmarshal([]byte(raw), product); err != nil {
		// Corrupt entry, drop it so the next read repopulates.
		if _, delErr := u.cache.Del(ctx, u.cacheKey(id)); delErr != nil {
			u.logger.WarnContext(ctx, "Product cache eviction failed", logger.Field{
				Key:   "productID",
				Value: id,
			})
		}
		return nil
	}
	return product
}

// toCache repopulates after a miss. SetNX keeps the write from
// clobbering a fresher entry a concurrent reader stored since our miss.
func (u *Usecase) toCache(ctx context.Context, product *productv1.Product) {
	if u.cache == nil {
		return
	}

	raw, err := json.Marshal(product)
	if err != nil {
		return
	}

	if _, err := u.cache.SetNX(ctx, u.cacheKey(product.ID), string(raw), u.cacheTTL); err != nil {
		u.logger.WarnContext(ctx, "Product cache write failed", logger.Field{
			Key:   "productID",
			Value: product.ID,
		})
	}
}

// writeThrough caches an authoritative value unconditionally.
func (u *Usecase) writeThrough(ctx context.Context, product *productv1.Product) {
	if u.cache == nil {
		return
	}

	raw, err := json.Marshal(product)
	if err != nil {
		return
	}

	if err := u.cache.Set(ctx, u.cacheKey(product.ID), string(raw), u.cacheTTL); err != nil {
		u.logger.WarnContext(ctx, "Product cache write failed", logger.Field{
			Key:   "productID",
			Value: product.ID,
		})
	}
}
