package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/pkg/config"
	dbpkg "github.com/brewlinehq/brewline-backend/pkg/db"
	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	pkgerrors "github.com/brewlinehq/brewline-backend/pkg/errors"
	"github.com/brewlinehq/brewline-backend/pkg/logger"
	"github.com/brewlinehq/brewline-backend/pkg/metrics"
	"github.com/brewlinehq/brewline-backend/pkg/outbox"
	"github.com/brewlinehq/brewline-backend/pkg/outbox/payloads"
	"github.com/brewlinehq/brewline-backend/pkg/pagination"
	"github.com/brewlinehq/brewline-backend/pkg/visibility"
)

const transitionRetryBase = 25 * time.Millisecond

// Service is the single entry point for order reads and lifecycle changes.
type Service interface {
	Get(ctx context.Context, actor visibility.Actor, orderID uuid.UUID) (*OrderResponse, error)
	List(ctx context.Context, actor visibility.Actor, filters ListFilters) (*ListResponse, error)
	Transition(ctx context.Context, actor visibility.Actor, orderID uuid.UUID, target enums.OrderStatus, agentID *uuid.UUID) (*OrderResponse, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	events     eventEmitter
	metrics    *metrics.OrderMetrics
	logg       *logger.Logger
	maxRetries int
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Events  eventEmitter
	Metrics *metrics.OrderMetrics
	Logger  *logger.Logger
	Config  config.OrdersConfig
}

// NewService constructs the order lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter is required")
	}
	maxRetries := params.Config.TransitionMaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &service{
		repo:       params.Repo,
		tx:         params.Tx,
		events:     params.Events,
		metrics:    params.Metrics,
		logg:       params.Logger,
		maxRetries: maxRetries,
	}, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := visibility.EnsureOrderVisible(actor, order); err != nil {
		return nil, err
	}
	resp := FromModel(order)
	return &resp, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, filters ListFilters) (*ListResponse, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	limit := pagination.NormalizeLimit(filters.Page.Limit)
	rows, err := s.repo.List(ctx, visibility.OrderScope(actor), filters, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	resp := ListResponse{Orders: make([]OrderResponse, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		resp.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for i := range rows {
		resp.Orders = append(resp.Orders, FromModel(&rows[i]))
	}
	return &resp, nil
}

// Transition applies one lifecycle change under the order's row lock. Storage
// serialization conflicts are retried with backoff before surfacing CONFLICT.
func (s *service) Transition(ctx context.Context, actor visibility.Actor, orderID uuid.UUID, target enums.OrderStatus, agentID *uuid.UUID) (*OrderResponse, error) {
	if err := visibility.EnsureWriteAllowed(actor); err != nil {
		return nil, err
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	var result *OrderResponse
	var from enums.OrderStatus
	backoff := retry.WithMaxRetries(uint64(s.maxRetries), retry.NewFibonacci(transitionRetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, prev, err := s.attemptTransition(ctx, actor, orderID, target, agentID)
		if err != nil {
			if dbpkg.IsSerializationFailure(err) {
				s.metrics.IncConflictRetried()
				return retry.RetryableError(err)
			}
			return err
		}
		result, from = resp, prev
		return nil
	})
	if err != nil {
		if dbpkg.IsSerializationFailure(err) {
			s.metrics.IncConflictExhausted()
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order is being modified concurrently")
		}
		return nil, err
	}

	s.metrics.IncTransition(from, target)
	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"order_id": orderID.String(),
			"from":     from.String(),
			"to":       target.String(),
		})
		s.logg.Info(lctx, "order transitioned")
	}
	return result, nil
}

func (s *service) attemptTransition(ctx context.Context, actor visibility.Actor, orderID uuid.UUID, target enums.OrderStatus, agentID *uuid.UUID) (*OrderResponse, enums.OrderStatus, error) {
	var resp *OrderResponse
	var statusBefore enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if err := visibility.EnsureOrderVisible(actor, order); err != nil {
			return err
		}
		if err := checkTransition(order, actor, target); err != nil {
			return err
		}

		from := order.Status
		now := time.Now().UTC()
		updates := map[string]any{
			"status":     target,
			"updated_at": now,
		}

		var delivery *models.Delivery
		if target == enums.OrderStatusAssigned {
			agent, err := s.resolveAgent(ctx, repo, order, agentID)
			if err != nil {
				return err
			}
			updates["delivery_agent_id"] = agent.ID
			order.DeliveryAgentID = &agent.ID
			delivery = &models.Delivery{
				ID:              uuid.New(),
				OrderID:         order.ID,
				DeliveryAgentID: agent.ID,
				Status:          enums.DeliveryStatusPending,
			}
			if err := repo.CreateDelivery(ctx, delivery); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery")
			}
		}

		switch target {
		case enums.OrderStatusCancelled:
			updates["cancelled_at"] = now
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
		}

		if err := repo.UpdateColumns(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		if err := s.syncDeliveryProjection(ctx, repo, order, target, now); err != nil {
			return err
		}
		if err := s.emitTransitionEvent(ctx, tx, actor, order, from, target, delivery); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order event")
		}

		updated, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		view := FromModel(updated)
		resp = &view
		statusBefore = from
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return resp, statusBefore, nil
}

// resolveAgent validates the supplied delivery agent for dispatch. A missing,
// wrong-role or wrong-branch agent is unavailable, not a validation error,
// since the caller cannot tell those cases apart without probing accounts.
func (s *service) resolveAgent(ctx context.Context, repo Repository, order *models.Order, agentID *uuid.UUID) (*models.User, error) {
	if agentID == nil || *agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery agent is required for assignment")
	}
	agent, err := repo.FindAgent(ctx, *agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "delivery agent unavailable")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery agent")
	}
	if agent.Role != enums.UserRoleDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "delivery agent unavailable")
	}
	if agent.BranchID == nil || *agent.BranchID != order.BranchID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "delivery agent unavailable")
	}
	return agent, nil
}

// syncDeliveryProjection keeps the courier projection in lockstep with the
// order inside the same transaction. The projection never advances past the
// order, and cancellation freezes it where it stands.
func (s *service) syncDeliveryProjection(ctx context.Context, repo Repository, order *models.Order, target enums.OrderStatus, now time.Time) error {
	if order.OrderType != enums.OrderTypeDelivery || order.Delivery == nil {
		return nil
	}

	var updates map[string]any
	switch target {
	case enums.OrderStatusPickedUp:
		updates = map[string]any{
			"status":       enums.DeliveryStatusPickedUp,
			"picked_up_at": now,
			"updated_at":   now,
		}
	case enums.OrderStatusDelivered:
		updates = map[string]any{
			"status":       enums.DeliveryStatusDelivered,
			"delivered_at": now,
			"updated_at":   now,
		}
	default:
		return nil
	}

	if err := repo.UpdateDeliveryColumns(ctx, order.Delivery.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery projection")
	}
	return nil
}

func (s *service) emitTransitionEvent(ctx context.Context, tx *gorm.DB, actor visibility.Actor, order *models.Order, from, target enums.OrderStatus, delivery *models.Delivery) error {
	actorRef := &outbox.ActorRef{
		UserID:   actor.ID,
		BranchID: actor.BranchID,
		Role:     actor.Role.String(),
	}

	if target == enums.OrderStatusAssigned {
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderAssigned,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef,
			Data: payloads.OrderAssignedEvent{
				OrderID:         order.ID,
				BranchID:        order.BranchID,
				DeliveryAgentID: delivery.DeliveryAgentID,
				DeliveryID:      delivery.ID,
			},
		})
	}

	eventType, ok := statusEventTypes[target]
	if !ok {
		return nil
	}
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actorRef,
		Data: payloads.OrderStatusChangedEvent{
			OrderID:  order.ID,
			BranchID: order.BranchID,
			From:     from,
			To:       target,
		},
	})
}

var statusEventTypes = map[enums.OrderStatus]enums.OutboxEventType{
	enums.OrderStatusAccepted:  enums.EventOrderAccepted,
	enums.OrderStatusPickedUp:  enums.EventOrderPickedUp,
	enums.OrderStatusDelivered: enums.EventOrderDelivered,
	enums.OrderStatusCancelled: enums.EventOrderCancelled,
}
