package deliveries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	pkgerrors "github.com/brewlinehq/brewline-backend/pkg/errors"
	"github.com/brewlinehq/brewline-backend/pkg/logger"
	"github.com/brewlinehq/brewline-backend/pkg/pagination"
	"github.com/brewlinehq/brewline-backend/pkg/visibility"
)

// Service exposes courier-facing delivery reads and the in-transit progress
// update. Pickup and delivered transitions flow through the order lifecycle,
// not here.
type Service interface {
	List(ctx context.Context, actor visibility.Actor, filters ListFilters) (*ListResponse, error)
	Get(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) (*Response, error)
	StartTransit(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) (*Response, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService constructs the delivery service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, filters ListFilters) (*ListResponse, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	limit := pagination.NormalizeLimit(filters.Page.Limit)
	rows, err := s.repo.List(ctx, visibility.DeliveryScope(actor), filters, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deliveries")
	}

	resp := ListResponse{Deliveries: make([]Response, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		resp.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for i := range rows {
		resp.Deliveries = append(resp.Deliveries, FromModel(&rows[i]))
	}
	return &resp, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) (*Response, error) {
	delivery, order, err := s.load(ctx, s.repo, deliveryID)
	if err != nil {
		return nil, err
	}
	if err := visibility.EnsureOrderVisible(actor, order); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
	}
	resp := FromModel(delivery)
	return &resp, nil
}

// StartTransit moves the courier projection from picked_up to in_transit. The
// owning order stays in picked_up; this is the only delivery state the order
// does not mirror.
func (s *service) StartTransit(ctx context.Context, actor visibility.Actor, deliveryID uuid.UUID) (*Response, error) {
	if actor.Role != enums.UserRoleDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only delivery agents report transit")
	}

	var resp *Response
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		delivery, err := repo.FindByIDForUpdate(ctx, deliveryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
		}
		if delivery.DeliveryAgentID != actor.ID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}

		order, err := repo.FindOrder(ctx, delivery.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if delivery.Status != enums.DeliveryStatusPickedUp || order.Status != enums.OrderStatusPickedUp {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery is not in transitable state")
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":     enums.DeliveryStatusInTransit,
			"updated_at": now,
		}
		if err := repo.UpdateColumns(ctx, delivery.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
		}

		delivery.Status = enums.DeliveryStatusInTransit
		delivery.UpdatedAt = now
		view := FromModel(delivery)
		resp = &view
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		lctx := s.logg.WithField(ctx, "delivery_id", deliveryID.String())
		s.logg.Info(lctx, "delivery in transit")
	}
	return resp, nil
}

func (s *service) load(ctx context.Context, repo Repository, deliveryID uuid.UUID) (*models.Delivery, *models.Order, error) {
	delivery, err := repo.FindByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	order, err := repo.FindOrder(ctx, delivery.OrderID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return delivery, order, nil
}
