package branches

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
)

// CreateBranchDTO carries the fields needed to open a new branch.
type CreateBranchDTO struct {
	Name        string  `json:"name" validate:"required"`
	Address     string  `json:"address" validate:"required"`
	City        string  `json:"city" validate:"required"`
	OpeningTime *string `json:"opening_time,omitempty"`
	ClosingTime *string `json:"closing_time,omitempty"`
}

// ToModel converts the DTO into a persistable branch model.
func (d CreateBranchDTO) ToModel() *models.Branch {
	branch := &models.Branch{
		Name:     strings.TrimSpace(d.Name),
		Address:  strings.TrimSpace(d.Address),
		City:     strings.TrimSpace(d.City),
		IsActive: true,
	}
	if d.OpeningTime != nil {
		branch.OpeningTime = *d.OpeningTime
	}
	if d.ClosingTime != nil {
		branch.ClosingTime = *d.ClosingTime
	}
	return branch
}

// UpdateBranchDTO carries the mutable branch fields; nil means unchanged.
type UpdateBranchDTO struct {
	Name        *string    `json:"name,omitempty"`
	Address     *string    `json:"address,omitempty"`
	City        *string    `json:"city,omitempty"`
	ManagerID   *uuid.UUID `json:"manager_id,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
	OpeningTime *string    `json:"opening_time,omitempty"`
	ClosingTime *string    `json:"closing_time,omitempty"`
}

// Updates builds the column map for a partial update.
func (d UpdateBranchDTO) Updates() map[string]any {
	updates := map[string]any{}
	if d.Name != nil {
		updates["name"] = strings.TrimSpace(*d.Name)
	}
	if d.Address != nil {
		updates["address"] = strings.TrimSpace(*d.Address)
	}
	if d.City != nil {
		updates["city"] = strings.TrimSpace(*d.City)
	}
	if d.ManagerID != nil {
		updates["manager_id"] = *d.ManagerID
	}
	if d.IsActive != nil {
		updates["is_active"] = *d.IsActive
	}
	if d.OpeningTime != nil {
		updates["opening_time"] = *d.OpeningTime
	}
	if d.ClosingTime != nil {
		updates["closing_time"] = *d.ClosingTime
	}
	return updates
}

// BranchResponse is the public shape returned by branch endpoints.
type BranchResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	ManagerID   *uuid.UUID `json:"manager_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	OpeningTime string     `json:"opening_time"`
	ClosingTime string     `json:"closing_time"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FromModel maps a branch model to its response shape.
func FromModel(branch *models.Branch) BranchResponse {
	return BranchResponse{
		ID:          branch.ID,
		Name:        branch.Name,
		Address:     branch.Address,
		City:        branch.City,
		ManagerID:   branch.ManagerID,
		IsActive:    branch.IsActive,
		OpeningTime: branch.OpeningTime,
		ClosingTime: branch.ClosingTime,
		CreatedAt:   branch.CreatedAt,
	}
}
