package deliveries

import (
	"time"

	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	"github.com/brewlinehq/brewline-backend/pkg/pagination"
)

// ListFilters narrows a delivery listing within the actor's scope.
type ListFilters struct {
	Status *enums.DeliveryStatus
	Page   pagination.Params
}

// Response is the courier-facing view of one delivery.
type Response struct {
	ID              uuid.UUID            `json:"id"`
	OrderID         uuid.UUID            `json:"orderId"`
	DeliveryAgentID uuid.UUID            `json:"deliveryAgentId"`
	Status          enums.DeliveryStatus `json:"status"`
	PickedUpAt      *time.Time           `json:"pickedUpAt,omitempty"`
	DeliveredAt     *time.Time           `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// ListResponse is one page of deliveries plus the cursor for the next one.
type ListResponse struct {
	Deliveries []Response `json:"deliveries"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// FromModel converts a delivery row into its response shape.
func FromModel(delivery *models.Delivery) Response {
	return Response{
		ID:              delivery.ID,
		OrderID:         delivery.OrderID,
		DeliveryAgentID: delivery.DeliveryAgentID,
		Status:          delivery.Status,
		PickedUpAt:      delivery.PickedUpAt,
		DeliveredAt:     delivery.DeliveredAt,
		CreatedAt:       delivery.CreatedAt,
		UpdatedAt:       delivery.UpdatedAt,
	}
}
