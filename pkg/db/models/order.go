package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/pkg/enums"
)

// Order is an immutable snapshot of a checked-out cart plus its lifecycle
// state. TotalCents must equal the sum of quantity*unit price across items at
// every point of the order's life.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID      uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	CustomerName    string            `gorm:"column:customer_name;not null"`
	CustomerEmail   string            `gorm:"column:customer_email;not null"`
	BranchID        uuid.UUID         `gorm:"column:branch_id;type:uuid;not null;index"`
	OrderType       enums.OrderType   `gorm:"column:order_type;type:order_type;not null"`
	Status          enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'created'"`
	TotalCents      int               `gorm:"column:total_cents;not null"`
	DeliveryAddress *string           `gorm:"column:delivery_address"`
	DeliveryAgentID *uuid.UUID        `gorm:"column:delivery_agent_id;type:uuid;index"`
	Notes           *string           `gorm:"column:notes"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Delivery        *Delivery         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CancelledAt     *time.Time        `gorm:"column:cancelled_at"`
	DeliveredAt     *time.Time        `gorm:"column:delivered_at"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// ComputedTotalCents recomputes the invariant total from the embedded items.
func (o Order) ComputedTotalCents() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity * item.UnitPriceCents
	}
	return total
}
