package orders

import (
	"fmt"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	pkgerrors "github.com/brewlinehq/brewline-backend/pkg/errors"
	"github.com/brewlinehq/brewline-backend/pkg/visibility"
)

// transitionKey identifies one edge of the order lifecycle graph.
type transitionKey struct {
	From enums.OrderStatus
	To   enums.OrderStatus
}

// transitionRule is one row of the lifecycle table: which roles may drive the
// edge and any extra precondition beyond the status pair itself.
type transitionRule struct {
	roles map[enums.UserRole]struct{}
	guard func(order *models.Order, actor visibility.Actor) error
}

func roleSet(roles ...enums.UserRole) map[enums.UserRole]struct{} {
	set := make(map[enums.UserRole]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// assignedAgentOnly restricts delivery-role actors to the order they are bound
// to. Branch roles pass; their reach is already bounded by visibility.
func assignedAgentOnly(order *models.Order, actor visibility.Actor) error {
	if actor.Role != enums.UserRoleDelivery {
		return nil
	}
	if order.DeliveryAgentID == nil || *order.DeliveryAgentID != actor.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order is assigned to another agent")
	}
	return nil
}

func deliveryOrdersOnly(order *models.Order, _ visibility.Actor) error {
	if order.OrderType != enums.OrderTypeDelivery {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only delivery orders can be assigned")
	}
	return nil
}

// pickupOrdersOnly guards the in-store handoff edge: a pickup order skips
// assignment and is marked picked up by branch staff when the customer
// collects it.
func pickupOrdersOnly(order *models.Order, _ visibility.Actor) error {
	if order.OrderType != enums.OrderTypePickup {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery orders must be assigned before pickup")
	}
	return nil
}

var branchRoles = roleSet(enums.UserRoleStaff, enums.UserRoleManager, enums.UserRoleAdmin)

// transitionTable encodes the full lifecycle as data. An edge absent from the
// table is an invalid transition for every actor.
var transitionTable = map[transitionKey]transitionRule{
	{enums.OrderStatusCreated, enums.OrderStatusAccepted}: {
		roles: branchRoles,
	},
	{enums.OrderStatusCreated, enums.OrderStatusCancelled}: {
		roles: roleSet(enums.UserRoleCustomer, enums.UserRoleStaff, enums.UserRoleManager, enums.UserRoleAdmin),
	},
	{enums.OrderStatusAccepted, enums.OrderStatusCancelled}: {
		roles: roleSet(enums.UserRoleCustomer, enums.UserRoleStaff, enums.UserRoleManager, enums.UserRoleAdmin),
	},
	{enums.OrderStatusAccepted, enums.OrderStatusAssigned}: {
		roles: branchRoles,
		guard: deliveryOrdersOnly,
	},
	{enums.OrderStatusAccepted, enums.OrderStatusPickedUp}: {
		roles: branchRoles,
		guard: pickupOrdersOnly,
	},
	{enums.OrderStatusAssigned, enums.OrderStatusCancelled}: {
		roles: branchRoles,
	},
	{enums.OrderStatusAssigned, enums.OrderStatusPickedUp}: {
		roles: roleSet(enums.UserRoleDelivery, enums.UserRoleStaff, enums.UserRoleManager, enums.UserRoleAdmin),
		guard: assignedAgentOnly,
	},
	{enums.OrderStatusPickedUp, enums.OrderStatusDelivered}: {
		roles: roleSet(enums.UserRoleDelivery, enums.UserRoleStaff, enums.UserRoleManager, enums.UserRoleAdmin),
		guard: assignedAgentOnly,
	},
}

// checkTransition validates one lifecycle edge for the given actor and order.
// It returns a state conflict when the edge does not exist, forbidden when the
// edge exists but the role may not drive it, and the guard's error otherwise.
func checkTransition(order *models.Order, actor visibility.Actor, target enums.OrderStatus) error {
	rule, ok := transitionTable[transitionKey{From: order.Status, To: target}]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition order from %s to %s", order.Status, target))
	}
	if _, allowed := rule.roles[actor.Role]; !allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not perform this transition")
	}
	if rule.guard != nil {
		return rule.guard(order, actor)
	}
	return nil
}
