package visibility

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	pkgerrors "github.com/brewlinehq/brewline-backend/pkg/errors"
)

// Actor is the authenticated principal resolved from the access token. Role
// and BranchID together decide which orders and deliveries the actor can see.
type Actor struct {
	ID       uuid.UUID
	Role     enums.UserRole
	BranchID *uuid.UUID
}

// Scope is a row filter applied to a GORM query.
type Scope func(*gorm.DB) *gorm.DB

var emptyScope Scope = func(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

var unrestrictedScope Scope = func(db *gorm.DB) *gorm.DB {
	return db
}

// OrderScope computes the filter applied to every order list/get for the
// actor. Branch-scoped roles without a branch and unknown roles resolve to an
// empty scope rather than an open one.
func OrderScope(actor Actor) Scope {
	switch actor.Role {
	case enums.UserRoleAdmin:
		return unrestrictedScope
	case enums.UserRoleCustomer:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("orders.customer_id = ?", actor.ID)
		}
	case enums.UserRoleDelivery:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("orders.delivery_agent_id = ?", actor.ID)
		}
	case enums.UserRoleStaff, enums.UserRoleManager:
		if actor.BranchID == nil {
			return emptyScope
		}
		branchID := *actor.BranchID
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("orders.branch_id = ?", branchID)
		}
	default:
		return emptyScope
	}
}

// DeliveryScope computes the filter applied to delivery queries. Customers and
// branch roles are resolved through the owning order.
func DeliveryScope(actor Actor) Scope {
	switch actor.Role {
	case enums.UserRoleAdmin:
		return unrestrictedScope
	case enums.UserRoleDelivery:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("deliveries.delivery_agent_id = ?", actor.ID)
		}
	case enums.UserRoleCustomer:
		return func(db *gorm.DB) *gorm.DB {
			return db.Joins("JOIN orders ON orders.id = deliveries.order_id").
				Where("orders.customer_id = ?", actor.ID)
		}
	case enums.UserRoleStaff, enums.UserRoleManager:
		if actor.BranchID == nil {
			return emptyScope
		}
		branchID := *actor.BranchID
		return func(db *gorm.DB) *gorm.DB {
			return db.Joins("JOIN orders ON orders.id = deliveries.order_id").
				Where("orders.branch_id = ?", branchID)
		}
	default:
		return emptyScope
	}
}

// CanSeeOrder is the in-memory form of OrderScope, used when the order row is
// already loaded (single gets and pre-transition checks).
func CanSeeOrder(actor Actor, order models.Order) bool {
	switch actor.Role {
	case enums.UserRoleAdmin:
		return true
	case enums.UserRoleCustomer:
		return order.CustomerID == actor.ID
	case enums.UserRoleDelivery:
		return order.DeliveryAgentID != nil && *order.DeliveryAgentID == actor.ID
	case enums.UserRoleStaff, enums.UserRoleManager:
		return actor.BranchID != nil && order.BranchID == *actor.BranchID
	default:
		return false
	}
}

// EnsureOrderVisible rejects reads of orders outside the actor's scope.
// Out-of-scope orders surface as not found so their existence does not leak.
func EnsureOrderVisible(actor Actor, order *models.Order) error {
	if order == nil || !CanSeeOrder(actor, *order) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

// EnsureWriteAllowed rejects mutate attempts by actors whose scope cannot
// contain any order at all.
func EnsureWriteAllowed(actor Actor) error {
	if !actor.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role not permitted")
	}
	if actor.Role.RequiresBranch() && actor.BranchID == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "branch membership required")
	}
	return nil
}
