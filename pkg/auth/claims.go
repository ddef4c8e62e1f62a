package auth

import (
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.UserRole
	BranchID *uuid.UUID
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients. These claims
// are the identity boundary: everything downstream resolves the actor from
// them, never from raw credentials.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	Role     enums.UserRole `json:"role"`
	BranchID *uuid.UUID     `json:"branch_id,omitempty"`
	jwt.RegisteredClaims
}
