package product

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	productv1 "github.com/muhammadchandra19/marketplace/internal/domain/product/v1"
	productMock "github.com/muhammadchandra19/marketplace/internal/domain/product/v1/mock"
	mockLogger "github.com/muhammadchandra19/marketplace/pkg/logger/mock"
	redisMock "github.com/muhammadchandra19/marketplace/pkg/redis/mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductUsecaseForTest(t *testing.T) (*Usecase, *productMock.MockRepository, *redisMock.MockClient) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	products := productMock.NewMockRepository(ctrl)
	cache := redisMock.NewMockClient(ctrl)

	log := mockLogger.NewMockInterface(ctrl)
	log.EXPECT().InfoContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().WarnContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	return NewUsecase(products, cache, log, time.Minute, "marketplace:"), products, cache
}

func TestProduct_GetProduct(t *testing.T) {
	ctx := context.Background()
	listed := &productv1.Product{
		ID:       "product-1",
		Name:     "Arabica beans",
		AvgPrice: decimal.RequireFromString("12.40"),
	}

	t.Run("cache hit skips repository", func(t *testing.T) {
		usecase, _, cache := newProductUsecaseForTest(t)

		raw, err := json.Marshal(listed)
		require.NoError(t, err)

		cache.EXPECT().Get(ctx, "marketplace:product:product-1").Return(string(raw), nil)

		product, err := usecase.GetProduct(ctx, "product-1")
		require.NoError(t, err)
		assert.Equal(t, "Arabica beans", product.Name)
	})

	t.Run("cache miss reads through and populates", func(t *testing.T) {
		usecase, products, cache := newProductUsecaseForTest(t)

		cache.EXPECT().Get(ctx, "marketplace:product:product-1").Return("", nil)
		products.EXPECT().GetByID(ctx, "product-1").Return(listed, nil)
		cache.EXPECT().SetNX(ctx, "marketplace:product:product-1", gomock.Any(), time.Minute).Return(true, nil)

		product, err := usecase.GetProduct(ctx, "product-1")
		require.NoError(t, err)
		assert.Equal(t, listed, product)
	})

	t.Run("cache failure degrades to repository", func(t *testing.T) {
		usecase, products, cache := newProductUsecaseForTest(t)

		cache.EXPECT().Get(ctx, "marketplace:product:product-1").Return("", stderrors.New("redis down"))
		products.EXPECT().GetByID(ctx, "product-1").Return(listed, nil)
		cache.EXPECT().SetNX(ctx, "marketplace:product:product-1", gomock.Any(), time.Minute).
			Return(false, stderrors.New("redis down"))

		product, err := usecase.GetProduct(ctx, "product-1")
		require.NoError(t, err)
		assert.Equal(t, listed, product)
	})

	t.Run("corrupt cache entry is evicted", func(t *testing.T) {
		usecase, products, cache := newProductUsecaseForTest(t)

		cache.EXPECT().Get(ctx, "marketplace:product:product-1").Return("{not json", nil)
		cache.EXPECT().Del(ctx, "marketplace:product:product-1").Return(int64(1), nil)
		products.EXPECT().GetByID(ctx, "product-1").Return(listed, nil)
		cache.EXPECT().SetNX(ctx, "marketplace:product:product-1", gomock.Any(), time.Minute).Return(true, nil)

		product, err := usecase.GetProduct(ctx, "product-1")
		require.NoError(t, err)
		assert.Equal(t, listed, product)
	})
}

func TestProduct_AddProduct(t *testing.T) {
	ctx := context.Background()
	usecase, products, cache := newProductUsecaseForTest(t)

	products.EXPECT().Store(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, product *productv1.Product) error {
			assert.NotEmpty(t, product.ID)
			assert.Equal(t, "Robusta beans", product.Name)
			return nil
		})
	cache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), time.Minute).Return(nil)

	product, err := usecase.AddProduct(ctx, "Robusta beans", decimal.RequireFromString("9.10"), "")
	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
}

func TestProduct_ListProducts(t *testing.T) {
	ctx := context.Background()
	usecase, products, _ := newProductUsecaseForTest(t)

	products.EXPECT().List(ctx, 20, 0).Return([]*productv1.Product{{ID: "product-1"}}, nil)

	list, err := usecase.ListProducts(ctx, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
