package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/pkg/enums"
)

// Delivery is the courier projection of a delivery-type order. It is created
// exactly once, in the same transaction that moves the order to assigned, and
// is updated in the same transaction as every later order transition so the
// two can never disagree.
type Delivery struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	DeliveryAgentID uuid.UUID            `gorm:"column:delivery_agent_id;type:uuid;not null;index"`
	Status          enums.DeliveryStatus `gorm:"column:status;type:delivery_status;not null;default:'pending'"`
	PickedUpAt      *time.Time           `gorm:"column:picked_up_at"`
	DeliveredAt     *time.Time           `gorm:"column:delivered_at"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
