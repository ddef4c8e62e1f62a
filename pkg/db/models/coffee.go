package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/brewlinehq/brewline-backend/pkg/enums"
)

// Coffee is a menu item. The order engine treats the catalog as read-only;
// prices are snapshotted into order items at checkout, never referenced live.
type Coffee struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string               `gorm:"column:name;not null"`
	Description *string              `gorm:"column:description"`
	PriceCents  int                  `gorm:"column:price_cents;not null"`
	Category    enums.CoffeeCategory `gorm:"column:category;type:coffee_category;not null"`
	Tags        pq.StringArray       `gorm:"column:tags;type:text[]"`
	Available   bool                 `gorm:"column:available;not null;default:true"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
