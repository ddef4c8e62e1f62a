package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	"github.com/brewlinehq/brewline-backend/pkg/types"
)

// CreateCoffeeDTO carries the fields needed to add a menu item.
type CreateCoffeeDTO struct {
	Name        string               `json:"name" validate:"required"`
	Description *string              `json:"description,omitempty"`
	PriceCents  int                  `json:"price_cents" validate:"required,gt=0"`
	Category    enums.CoffeeCategory `json:"category" validate:"required"`
	Tags        []string             `json:"tags,omitempty"`
}

// ToModel converts the DTO into a persistable coffee model.
func (d CreateCoffeeDTO) ToModel() *models.Coffee {
	return &models.Coffee{
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
		PriceCents:  d.PriceCents,
		Category:    d.Category,
		Tags:        pq.StringArray(d.Tags),
		Available:   true,
	}
}

// UpdateCoffeeDTO carries the mutable coffee fields; nil means unchanged.
type UpdateCoffeeDTO struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	PriceCents  *int                  `json:"price_cents,omitempty" validate:"omitempty,gt=0"`
	Category    *enums.CoffeeCategory `json:"category,omitempty"`
	Tags        *[]string             `json:"tags,omitempty"`
	Available   *bool                 `json:"available,omitempty"`
}

// Updates builds the column map for a partial update.
func (d UpdateCoffeeDTO) Updates() map[string]any {
	updates := map[string]any{}
	if d.Name != nil {
		updates["name"] = strings.TrimSpace(*d.Name)
	}
	if d.Description != nil {
		updates["description"] = *d.Description
	}
	if d.PriceCents != nil {
		updates["price_cents"] = *d.PriceCents
	}
	if d.Category != nil {
		updates["category"] = *d.Category
	}
	if d.Tags != nil {
		updates["tags"] = pq.StringArray(*d.Tags)
	}
	if d.Available != nil {
		updates["available"] = *d.Available
	}
	return updates
}

// ListFilters restrict the coffee listing.
type ListFilters struct {
	Category      *enums.CoffeeCategory
	AvailableOnly bool
}

// CoffeeResponse is the public shape returned by catalog endpoints.
type CoffeeResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Description *string              `json:"description,omitempty"`
	PriceCents  int                  `json:"price_cents"`
	Price       string               `json:"price"`
	Category    enums.CoffeeCategory `json:"category"`
	Tags        []string             `json:"tags"`
	Available   bool                 `json:"available"`
	CreatedAt   time.Time            `json:"created_at"`
}

// FromModel maps a coffee model to its response shape.
func FromModel(coffee *models.Coffee) CoffeeResponse {
	tags := []string(coffee.Tags)
	if tags == nil {
		tags = []string{}
	}
	return CoffeeResponse{
		ID:          coffee.ID,
		Name:        coffee.Name,
		Description: coffee.Description,
		PriceCents:  coffee.PriceCents,
		Price:       types.FormatCents(coffee.PriceCents),
		Category:    coffee.Category,
		Tags:        tags,
		Available:   coffee.Available,
		CreatedAt:   coffee.CreatedAt,
	}
}
