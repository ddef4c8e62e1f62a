package checkout

import (
	"github.com/google/uuid"
)

// Request is the checkout payload. DeliveryAddress is mandatory for delivery
// orders and ignored for pickup orders.
type Request struct {
	BranchID        uuid.UUID `json:"branchId" validate:"required"`
	OrderType       string    `json:"orderType" validate:"required,oneof=pickup delivery"`
	DeliveryAddress *string   `json:"deliveryAddress,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
}
