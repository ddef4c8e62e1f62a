package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  coffee_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, coffee_id)
);`
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func seedCart(t *testing.T, db *gorm.DB, customerID uuid.UUID) models.CartRecord {
	t.Helper()
	record := models.CartRecord{ID: uuid.New(), CustomerID: customerID}
	require.NoError(t, db.Create(&record).Error)
	return record
}

func TestFindOrCreateForUpdateCreatesOnce(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	customerID := uuid.New()

	first, err := repo.FindOrCreateForUpdate(ctx, customerID)
	require.NoError(t, err)
	require.Equal(t, customerID, first.CustomerID)

	second, err := repo.FindOrCreateForUpdate(ctx, customerID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestFindItemScopedToCart(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mine := seedCart(t, db, uuid.New())
	other := seedCart(t, db, uuid.New())

	item := models.CartItem{ID: uuid.New(), CartID: other.ID, CoffeeID: uuid.New(), Quantity: 2}
	require.NoError(t, db.Create(&item).Error)

	// The item exists but belongs to another customer's cart.
	_, err := repo.FindItem(ctx, mine.ID, item.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := repo.FindItem(ctx, other.ID, item.ID)
	require.NoError(t, err)
	require.Equal(t, 2, found.Quantity)
}

func TestDeleteItemsClearsOnlyTargetCart(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := seedCart(t, db, uuid.New())
	second := seedCart(t, db, uuid.New())
	require.NoError(t, db.Create(&models.CartItem{ID: uuid.New(), CartID: first.ID, CoffeeID: uuid.New(), Quantity: 1}).Error)
	require.NoError(t, db.Create(&models.CartItem{ID: uuid.New(), CartID: second.ID, CoffeeID: uuid.New(), Quantity: 3}).Error)

	require.NoError(t, repo.DeleteItems(ctx, first.ID))

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", first.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", second.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestUpdateItemQuantity(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	record := seedCart(t, db, uuid.New())
	item := models.CartItem{ID: uuid.New(), CartID: record.ID, CoffeeID: uuid.New(), Quantity: 1}
	require.NoError(t, db.Create(&item).Error)

	require.NoError(t, repo.UpdateItemQuantity(ctx, item.ID, 5))

	found, err := repo.FindItem(ctx, record.ID, item.ID)
	require.NoError(t, err)
	require.Equal(t, 5, found.Quantity)
}
