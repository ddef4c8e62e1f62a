package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
)

// CreateUserDTO carries the fields needed to insert a user row.
type CreateUserDTO struct {
	Email        string
	Name         string
	PasswordHash string
	Role         enums.UserRole
	BranchID     *uuid.UUID
}

// ToModel converts the DTO into a persistable user model.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        strings.ToLower(strings.TrimSpace(d.Email)),
		Name:         strings.TrimSpace(d.Name),
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		BranchID:     d.BranchID,
	}
}

// UserResponse is the public shape returned by auth and profile endpoints.
type UserResponse struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Role        enums.UserRole `json:"role"`
	BranchID    *uuid.UUID     `json:"branch_id,omitempty"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// FromModel maps a user model to its response shape.
func FromModel(user *models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		BranchID:    user.BranchID,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
