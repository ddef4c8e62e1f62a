package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/internal/cart"
	"github.com/brewlinehq/brewline-backend/internal/orders"
	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	pkgerrors "github.com/brewlinehq/brewline-backend/pkg/errors"
	"github.com/brewlinehq/brewline-backend/pkg/logger"
	"github.com/brewlinehq/brewline-backend/pkg/metrics"
	"github.com/brewlinehq/brewline-backend/pkg/outbox"
	"github.com/brewlinehq/brewline-backend/pkg/outbox/payloads"
)

// Service converts a customer's cart into an immutable order.
type Service interface {
	Checkout(ctx context.Context, customerID uuid.UUID, req Request) (*orders.OrderResponse, error)
}

type coffeeCatalog interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Coffee, error)
}

type branchFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Branch, error)
}

type customerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	carts     cart.Repository
	coffees   coffeeCatalog
	branches  branchFinder
	customers customerFinder
	orders    orders.Repository
	tx        txRunner
	events    eventEmitter
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	Carts     cart.Repository
	Coffees   coffeeCatalog
	Branches  branchFinder
	Customers customerFinder
	Orders    orders.Repository
	Tx        txRunner
	Events    eventEmitter
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
}

// NewService constructs the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.Coffees == nil {
		return nil, fmt.Errorf("coffee catalog is required")
	}
	if params.Branches == nil {
		return nil, fmt.Errorf("branch finder is required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer finder is required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter is required")
	}
	return &service{
		carts:     params.Carts,
		coffees:   params.Coffees,
		branches:  params.Branches,
		customers: params.Customers,
		orders:    params.Orders,
		tx:        params.Tx,
		events:    params.Events,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

// Checkout snapshots the cart into a new order, clears the cart and queues the
// created event, all inside one transaction.
func (s *service) Checkout(ctx context.Context, customerID uuid.UUID, req Request) (*orders.OrderResponse, error) {
	orderType, address, err := validateOrderType(req)
	if err != nil {
		return nil, err
	}

	branch, err := s.branches.FindByID(ctx, req.BranchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	if !branch.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch is not accepting orders")
	}

	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	var resp *orders.OrderResponse
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		record, err := cartRepo.FindForUpdate(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		items, total, err := s.snapshotItems(ctx, record.Items)
		if err != nil {
			return err
		}

		order := &models.Order{
			ID:              uuid.New(),
			CustomerID:      customer.ID,
			CustomerName:    customer.Name,
			CustomerEmail:   customer.Email,
			BranchID:        branch.ID,
			OrderType:       orderType,
			Status:          enums.OrderStatusCreated,
			TotalCents:      total,
			DeliveryAddress: address,
			Notes:           req.Notes,
			Items:           items,
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}

		orderRepo := s.orders.WithTx(tx)
		if err := orderRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := cartRepo.DeleteItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		if err := cartRepo.TouchCart(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor: &outbox.ActorRef{
				UserID: customer.ID,
				Role:   customer.Role.String(),
			},
			Data: payloads.OrderCreatedEvent{
				OrderID:    order.ID,
				CustomerID: customer.ID,
				BranchID:   branch.ID,
				OrderType:  orderType,
				TotalCents: total,
				ItemCount:  len(order.Items),
			},
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order event")
		}

		view := orders.FromModel(order)
		resp = &view
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCheckout()
	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"order_id":    resp.ID.String(),
			"branch_id":   branch.ID.String(),
			"total_cents": resp.TotalCents,
		})
		s.logg.Info(lctx, "checkout completed")
	}
	return resp, nil
}

// snapshotItems freezes each cart line against the current catalog. Names and
// unit prices are copied so later catalog edits cannot reshape the order.
func (s *service) snapshotItems(ctx context.Context, lines []models.CartItem) ([]models.OrderItem, int, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.CoffeeID)
	}
	coffees, err := s.coffees.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coffees")
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := 0
	for _, line := range lines {
		coffee, ok := coffees[line.CoffeeID]
		if !ok || !coffee.Available {
			return nil, 0, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("coffee %s is unavailable", line.CoffeeID))
		}
		lineTotal := line.Quantity * coffee.PriceCents
		items = append(items, models.OrderItem{
			ID:             uuid.New(),
			CoffeeID:       coffee.ID,
			CoffeeName:     coffee.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: coffee.PriceCents,
			TotalCents:     lineTotal,
		})
		total += lineTotal
	}
	return items, total, nil
}

func validateOrderType(req Request) (enums.OrderType, *string, error) {
	orderType, err := enums.ParseOrderType(req.OrderType)
	if err != nil {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}
	if orderType == enums.OrderTypePickup {
		// Pickup orders carry no address even when one is supplied.
		return orderType, nil, nil
	}

	if req.DeliveryAddress == nil || strings.TrimSpace(*req.DeliveryAddress) == "" {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required for delivery orders")
	}
	address := strings.TrimSpace(*req.DeliveryAddress)
	return orderType, &address, nil
}
