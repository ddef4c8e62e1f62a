package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/outbox"
	"github.com/brewlinehq/brewline-backend/pkg/visibility"
)

// Repository is the persistence surface the order service depends on.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, scope visibility.Scope, filters ListFilters, limit int) ([]models.Order, error)
	UpdateColumns(ctx context.Context, id uuid.UUID, updates map[string]any) error

	CreateDelivery(ctx context.Context, delivery *models.Delivery) error
	FindDeliveryByOrder(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error)
	UpdateDeliveryColumns(ctx context.Context, id uuid.UUID, updates map[string]any) error

	FindAgent(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindStaleCreated(ctx context.Context, before time.Time, limit int) ([]models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}
