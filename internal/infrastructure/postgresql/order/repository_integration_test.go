package order

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	orderv1 "github.com/muhammadchandra19/marketplace/internal/domain/order/v1"
	"github.com/muhammadchandra19/marketplace/pkg/errors"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
	"github.com/muhammadchandra19/marketplace/pkg/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RepositoryTestSuite struct {
	suite.Suite
	helper *postgresql.TestHelper
	repo   orderv1.Repository
	ctx    context.Context
}

// SetupSuite runs once before all tests
func (suite *RepositoryTestSuite) SetupSuite() {
	suite.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../../migrations")
	require.NoError(suite.T(), err)

	config := &postgresql.TestContainerConfig{
		Image:            "postgres:15-alpine",
		Database:         "marketplace_test_db",
		Username:         "marketplace_test_user",
		Password:         "marketplace_test_pass",
		MigrationsPath:   migrationsPath,
		MigrationPattern: "*.up.sql",
		StartupTimeout:   3 * time.Minute,
	}

	suite.helper = postgresql.NewTestHelperWithConfig(suite.T(), config)

	log, err := logger.NewLogger()
	require.NoError(suite.T(), err)
	suite.repo = NewRepository(suite.helper.GetClient(), log)
}

// SetupTest runs before each test
func (suite *RepositoryTestSuite) SetupTest() {
	suite.helper.CleanupTables()
	suite.helper.ExecuteSQL(`INSERT INTO products (id, name, avg_price) VALUES ('product-1', 'Arabica beans', 12.40)`)
}

func (suite *RepositoryTestSuite) storeOrder(id, userID string, side orderv1.Side, price string, volume int64, createdAt time.Time) *orderv1.Order {
	order := &orderv1.Order{
		ID:        id,
		UserID:    userID,
		ProductID: "product-1",
		Side:      side,
		Price:     decimal.RequireFromString(price),
		Volume:    volume,
		Filled:    0,
		Status:    orderv1.StatusPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(suite.T(), suite.repo.Store(suite.ctx, order))
	return order
}

func (suite *RepositoryTestSuite) TestStoreAndGetByID() {
	now := time.Now().UTC().Truncate(time.Microsecond)
	stored := suite.storeOrder("order-1", "user-1", orderv1.SideBuy, "100.50", 10, now)

	loaded, err := suite.repo.GetByID(suite.ctx, "order-1")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), stored.ID, loaded.ID)
	assert.Equal(suite.T(), stored.UserID, loaded.UserID)
	assert.Equal(suite.T(), orderv1.SideBuy, loaded.Side)
	assert.True(suite.T(), loaded.Price.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(suite.T(), int64(10), loaded.Volume)
	assert.Equal(suite.T(), int64(0), loaded.Filled)
	assert.Equal(suite.T(), orderv1.StatusPending, loaded.Status)
}

func (suite *RepositoryTestSuite) TestGetByIDNotFound() {
	_, err := suite.repo.GetByID(suite.ctx, "missing")
	require.Error(suite.T(), err)
	assert.True(suite.T(), errors.HasCode(err, errors.OrderNotFound))
}

func (suite *RepositoryTestSuite) TestFindRestingPriceTimeOrder() {
	base := time.Now().UTC().Add(-time.Hour)

	// Same price level, the older order must come first.
	suite.storeOrder("sell-98b", "user-2", orderv1.SideSell, "98", 5, base.Add(10*time.Minute))
	suite.storeOrder("sell-98a", "user-3", orderv1.SideSell, "98", 5, base)
	suite.storeOrder("sell-95", "user-4", orderv1.SideSell, "95", 5, base.Add(20*time.Minute))
	// Too expensive for a taker at 100.
	suite.storeOrder("sell-105", "user-5", orderv1.SideSell, "105", 5, base)
	// Taker's own order must be excluded.
	suite.storeOrder("sell-own", "user-1", orderv1.SideSell, "90", 5, base)
	// Wrong side.
	suite.storeOrder("buy-99", "user-6", orderv1.SideBuy, "99", 5, base)

	resting, err := suite.repo.FindResting(suite.ctx, "product-1", orderv1.SideSell, decimal.RequireFromString("100"), "user-1")
	require.NoError(suite.T(), err)

	ids := make([]string, 0, len(resting))
	for _, order := range resting {
		ids = append(ids, order.ID)
	}
	assert.Equal(suite.T(), []string{"sell-95", "sell-98a", "sell-98b"}, ids)
}

func (suite *RepositoryTestSuite) TestFindRestingExcludesClosedOrders() {
	now := time.Now().UTC()
	suite.storeOrder("sell-1", "user-2", orderv1.SideSell, "95", 5, now)

	require.NoError(suite.T(), suite.repo.ApplyFill(suite.ctx, "sell-1", 0, 5))

	resting, err := suite.repo.FindResting(suite.ctx, "product-1", orderv1.SideSell, decimal.RequireFromString("100"), "user-1")
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), resting)
}

func (suite *RepositoryTestSuite) TestApplyFill() {
	now := time.Now().UTC()
	suite.storeOrder("order-1", "user-1", orderv1.SideBuy, "100", 10, now)

	// Partial fill.
	require.NoError(suite.T(), suite.repo.ApplyFill(suite.ctx, "order-1", 0, 4))

	loaded, err := suite.repo.GetByID(suite.ctx, "order-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(4), loaded.Filled)
	assert.Equal(suite.T(), orderv1.StatusPartiallyFilled, loaded.Status)

	// Stale guard loses.
	err = suite.repo.ApplyFill(suite.ctx, "order-1", 0, 4)
	require.Error(suite.T(), err)
	assert.True(suite.T(), errors.HasCode(err, errors.OrderConcurrentModification))

	// Overfill is refused even with the right guard.
	err = suite.repo.ApplyFill(suite.ctx, "order-1", 4, 7)
	require.Error(suite.T(), err)
	assert.True(suite.T(), errors.HasCode(err, errors.OrderConcurrentModification))

	// Fill to completion.
	require.NoError(suite.T(), suite.repo.ApplyFill(suite.ctx, "order-1", 4, 6))

	loaded, err = suite.repo.GetByID(suite.ctx, "order-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), orderv1.StatusFilled, loaded.Status)

	// Terminal orders take no more fills.
	err = suite.repo.ApplyFill(suite.ctx, "order-1", 10, 1)
	require.Error(suite.T(), err)
}

func (suite *RepositoryTestSuite) TestMarkCancelled() {
	now := time.Now().UTC()
	suite.storeOrder("order-1", "user-1", orderv1.SideBuy, "100", 10, now)

	require.NoError(suite.T(), suite.repo.MarkCancelled(suite.ctx, "order-1"))

	loaded, err := suite.repo.GetByID(suite.ctx, "order-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), orderv1.StatusCancelled, loaded.Status)

	// Cancelling twice fails.
	err = suite.repo.MarkCancelled(suite.ctx, "order-1")
	require.Error(suite.T(), err)
	assert.True(suite.T(), errors.HasCode(err, errors.OrderNotCancellable))

	err = suite.repo.MarkCancelled(suite.ctx, "missing")
	require.Error(suite.T(), err)
	assert.True(suite.T(), errors.HasCode(err, errors.OrderNotFound))
}

func (suite *RepositoryTestSuite) TestList() {
	base := time.Now().UTC().Add(-time.Hour)
	suite.storeOrder("order-1", "user-1", orderv1.SideBuy, "100", 10, base)
	suite.storeOrder("order-2", "user-1", orderv1.SideSell, "110", 5, base.Add(time.Minute))
	suite.storeOrder("order-3", "user-2", orderv1.SideBuy, "90", 2, base.Add(2*time.Minute))

	orders, err := suite.repo.List(suite.ctx, orderv1.Filter{UserID: "user-1"})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), orders, 2)
	// Newest first by default.
	assert.Equal(suite.T(), "order-2", orders[0].ID)

	orders, err = suite.repo.List(suite.ctx, orderv1.Filter{UserID: "user-1", Side: orderv1.SideBuy})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), orders, 1)
	assert.Equal(suite.T(), "order-1", orders[0].ID)
}

func TestRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositoryTestSuite))
}
