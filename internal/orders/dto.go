package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	"github.com/brewlinehq/brewline-backend/pkg/pagination"
	"github.com/brewlinehq/brewline-backend/pkg/types"
)

// TransitionRequest is the wire form of a status change. AgentID is required
// only when the target status is assigned.
type TransitionRequest struct {
	Status  string     `json:"status" validate:"required"`
	AgentID *uuid.UUID `json:"agentId,omitempty" validate:"omitempty"`
}

// ListFilters narrows an order listing within the actor's visibility scope.
type ListFilters struct {
	Status *enums.OrderStatus
	Page   pagination.Params
}

// ItemResponse is one immutable order line.
type ItemResponse struct {
	ID             uuid.UUID `json:"id"`
	CoffeeID       uuid.UUID `json:"coffeeId"`
	CoffeeName     string    `json:"coffeeName"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unitPriceCents"`
	UnitPrice      string    `json:"unitPrice"`
	TotalCents     int       `json:"totalCents"`
	Total          string    `json:"total"`
}

// DeliveryView is the courier projection embedded in an order response.
type DeliveryView struct {
	ID              uuid.UUID            `json:"id"`
	DeliveryAgentID uuid.UUID            `json:"deliveryAgentId"`
	Status          enums.DeliveryStatus `json:"status"`
	PickedUpAt      *time.Time           `json:"pickedUpAt,omitempty"`
	DeliveredAt     *time.Time           `json:"deliveredAt,omitempty"`
}

// OrderResponse is the canonical read model for a single order.
type OrderResponse struct {
	ID              uuid.UUID         `json:"id"`
	CustomerID      uuid.UUID         `json:"customerId"`
	CustomerName    string            `json:"customerName"`
	BranchID        uuid.UUID         `json:"branchId"`
	OrderType       enums.OrderType   `json:"orderType"`
	Status          enums.OrderStatus `json:"status"`
	TotalCents      int               `json:"totalCents"`
	Total           string            `json:"total"`
	DeliveryAddress *string           `json:"deliveryAddress,omitempty"`
	DeliveryAgentID *uuid.UUID        `json:"deliveryAgentId,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	Items           []ItemResponse    `json:"items"`
	Delivery        *DeliveryView     `json:"delivery,omitempty"`
	CancelledAt     *time.Time        `json:"cancelledAt,omitempty"`
	DeliveredAt     *time.Time        `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ListResponse is one page of orders plus the cursor for the next one.
type ListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

// FromModel converts a loaded order into its response shape.
func FromModel(order *models.Order) OrderResponse {
	items := make([]ItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemResponse{
			ID:             item.ID,
			CoffeeID:       item.CoffeeID,
			CoffeeName:     item.CoffeeName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			UnitPrice:      types.FormatCents(item.UnitPriceCents),
			TotalCents:     item.TotalCents,
			Total:          types.FormatCents(item.TotalCents),
		})
	}

	resp := OrderResponse{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		CustomerName:    order.CustomerName,
		BranchID:        order.BranchID,
		OrderType:       order.OrderType,
		Status:          order.Status,
		TotalCents:      order.TotalCents,
		Total:           types.FormatCents(order.TotalCents),
		DeliveryAddress: order.DeliveryAddress,
		DeliveryAgentID: order.DeliveryAgentID,
		Notes:           order.Notes,
		Items:           items,
		CancelledAt:     order.CancelledAt,
		DeliveredAt:     order.DeliveredAt,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if order.Delivery != nil {
		resp.Delivery = &DeliveryView{
			ID:              order.Delivery.ID,
			DeliveryAgentID: order.Delivery.DeliveryAgentID,
			Status:          order.Delivery.Status,
			PickedUpAt:      order.Delivery.PickedUpAt,
			DeliveredAt:     order.Delivery.DeliveredAt,
		}
	}
	return resp
}
