package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
)

// Repository defines persistence operations for the cart ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error)
	FindOrCreateForUpdate(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error)
	FindForUpdate(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error)
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	FindItemByCoffee(ctx context.Context, cartID, coffeeID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
	TouchCart(ctx context.Context, cartID uuid.UUID) error
}

type coffeeFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coffee, error)
}
