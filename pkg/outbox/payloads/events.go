package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/pkg/enums"
)

// OrderCreatedEvent signals a successful checkout.
type OrderCreatedEvent struct {
	OrderID    uuid.UUID       `json:"orderId"`
	CustomerID uuid.UUID       `json:"customerId"`
	BranchID   uuid.UUID       `json:"branchId"`
	OrderType  enums.OrderType `json:"orderType"`
	TotalCents int             `json:"totalCents"`
	ItemCount  int             `json:"itemCount"`
}

// OrderStatusChangedEvent is emitted on every accepted/picked-up/delivered/
// cancelled transition.
type OrderStatusChangedEvent struct {
	OrderID  uuid.UUID         `json:"orderId"`
	BranchID uuid.UUID         `json:"branchId"`
	From     enums.OrderStatus `json:"from"`
	To       enums.OrderStatus `json:"to"`
}

// OrderAssignedEvent carries the agent binding alongside the status change.
type OrderAssignedEvent struct {
	OrderID         uuid.UUID `json:"orderId"`
	BranchID        uuid.UUID `json:"branchId"`
	DeliveryAgentID uuid.UUID `json:"deliveryAgentId"`
	DeliveryID      uuid.UUID `json:"deliveryId"`
}

// OrderExpiredEvent describes a stale order the expiry job auto-cancelled.
type OrderExpiredEvent struct {
	OrderID   uuid.UUID `json:"orderId"`
	BranchID  uuid.UUID `json:"branchId"`
	ExpiredAt time.Time `json:"expiredAt"`
	TTLHours  int       `json:"ttlHours"`
}
