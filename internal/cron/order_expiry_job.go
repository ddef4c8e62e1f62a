package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/internal/orders"
	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	"github.com/brewlinehq/brewline-backend/pkg/logger"
	"github.com/brewlinehq/brewline-backend/pkg/metrics"
	"github.com/brewlinehq/brewline-backend/pkg/outbox"
	"github.com/brewlinehq/brewline-backend/pkg/outbox/payloads"
)

const defaultExpiryBatchSize = 200

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// OrderExpiryJobParams configure the stale order expiry job.
type OrderExpiryJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Orders    orders.Repository
	Outbox    outboxEmitter
	Metrics   *metrics.OrderMetrics
	TTL       time.Duration
	BatchSize int
}

// NewOrderExpiryJob builds the cron job that cancels orders stuck in created.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("stale order ttl must be positive")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultExpiryBatchSize
	}
	return &orderExpiryJob{
		logg:      params.Logger,
		db:        params.DB,
		orders:    params.Orders,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		ttl:       params.TTL,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg      *logger.Logger
	db        txRunner
	orders    orders.Repository
	outbox    outboxEmitter
	metrics   *metrics.OrderMetrics
	ttl       time.Duration
	batchSize int
	now       func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

// Run cancels every order that has been sitting in created longer than the
// TTL. Each order is expired in its own transaction so one failure does not
// roll back the batch.
func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	stale, err := j.orders.FindStaleCreated(ctx, cutoff, j.batchSize)
	if err != nil {
		return fmt.Errorf("query stale orders: %w", err)
	}

	var errs []error
	expired := 0
	for _, order := range stale {
		if err := j.expireOrder(ctx, order); err != nil {
			errs = append(errs, fmt.Errorf("expire order %s: %w", order.ID, err))
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(stale),
		"expired":    expired,
	})
	j.logg.Info(logCtx, "stale order expiry loop complete")
	return multierr.Combine(errs...)
}

func (j *orderExpiryJob) expireOrder(ctx context.Context, order models.Order) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.orders.WithTx(tx)
		current, err := repo.FindByIDForUpdate(ctx, order.ID)
		if err != nil {
			return err
		}
		// Someone moved it since the scan; leave it alone.
		if current.Status != enums.OrderStatusCreated {
			return nil
		}

		now := j.now().UTC()
		updates := map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		}
		if err := repo.UpdateColumns(ctx, current.ID, updates); err != nil {
			return err
		}
		j.metrics.IncTransition(enums.OrderStatusCreated, enums.OrderStatusCancelled)

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderExpired,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			OccurredAt:    now,
			Data: payloads.OrderExpiredEvent{
				OrderID:   current.ID,
				BranchID:  current.BranchID,
				ExpiredAt: now,
				TTLHours:  int(j.ttl.Hours()),
			},
		}
		return j.outbox.EmitIfNotExists(ctx, tx, event)
	})
}
