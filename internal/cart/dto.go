package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
)

// AddItemRequest is the payload for adding a coffee to the cart. Quantity
// defaults to one; adding a coffee already in the cart increments the line.
type AddItemRequest struct {
	CoffeeID uuid.UUID `json:"coffee_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"omitempty,gte=1"`
}

// UpdateQuantityRequest sets a line's quantity. Zero or negative removes the
// line; this is documented policy, not an error.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ItemResponse is one cart line as returned to the customer.
type ItemResponse struct {
	ID       uuid.UUID `json:"id"`
	CoffeeID uuid.UUID `json:"coffee_id"`
	Quantity int       `json:"quantity"`
}

// Response is the customer's cart view. No pricing appears here; prices are
// computed and snapshotted at checkout only.
type Response struct {
	ID        uuid.UUID      `json:"id"`
	Items     []ItemResponse `json:"items"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// FromModel maps a cart record to its response shape.
func FromModel(record *models.CartRecord) Response {
	items := make([]ItemResponse, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, ItemResponse{
			ID:       item.ID,
			CoffeeID: item.CoffeeID,
			Quantity: item.Quantity,
		})
	}
	return Response{
		ID:        record.ID,
		Items:     items,
		UpdatedAt: record.UpdatedAt,
	}
}
