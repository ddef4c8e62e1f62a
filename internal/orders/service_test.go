package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/pkg/config"
	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	pkgerrors "github.com/brewlinehq/brewline-backend/pkg/errors"
	"github.com/brewlinehq/brewline-backend/pkg/outbox"
	"github.com/brewlinehq/brewline-backend/pkg/visibility"
)

type stubOrderTx struct{}

func (stubOrderTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubOrderRepo struct {
	order    *models.Order
	delivery *models.Delivery
	agents   map[uuid.UUID]*models.User

	// lockErrs is drained one error per FindByIDForUpdate call before the
	// lookup succeeds, simulating serialization conflicts.
	lockErrs []error
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) error {
	s.order = order
	return nil
}

func (s *stubOrderRepo) snapshot() *models.Order {
	if s.order == nil {
		return nil
	}
	view := *s.order
	if s.delivery != nil {
		deliveryCopy := *s.delivery
		view.Delivery = &deliveryCopy
	}
	return &view
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.snapshot(), nil
}

func (s *stubOrderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if len(s.lockErrs) > 0 {
		err := s.lockErrs[0]
		s.lockErrs = s.lockErrs[1:]
		return nil, err
	}
	return s.FindByID(ctx, id)
}

func (s *stubOrderRepo) List(ctx context.Context, scope visibility.Scope, filters ListFilters, limit int) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) UpdateColumns(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.order == nil || s.order.ID != id {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"]; ok {
		s.order.Status = v.(enums.OrderStatus)
	}
	if v, ok := updates["delivery_agent_id"]; ok {
		agentID := v.(uuid.UUID)
		s.order.DeliveryAgentID = &agentID
	}
	if v, ok := updates["cancelled_at"]; ok {
		at := v.(time.Time)
		s.order.CancelledAt = &at
	}
	if v, ok := updates["delivered_at"]; ok {
		at := v.(time.Time)
		s.order.DeliveredAt = &at
	}
	if v, ok := updates["updated_at"]; ok {
		s.order.UpdatedAt = v.(time.Time)
	}
	return nil
}

func (s *stubOrderRepo) CreateDelivery(ctx context.Context, delivery *models.Delivery) error {
	s.delivery = delivery
	return nil
}

func (s *stubOrderRepo) FindDeliveryByOrder(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error) {
	if s.delivery == nil || s.delivery.OrderID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.delivery, nil
}

func (s *stubOrderRepo) UpdateDeliveryColumns(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.delivery == nil || s.delivery.ID != id {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"]; ok {
		s.delivery.Status = v.(enums.DeliveryStatus)
	}
	if v, ok := updates["picked_up_at"]; ok {
		at := v.(time.Time)
		s.delivery.PickedUpAt = &at
	}
	if v, ok := updates["delivered_at"]; ok {
		at := v.(time.Time)
		s.delivery.DeliveredAt = &at
	}
	return nil
}

func (s *stubOrderRepo) FindAgent(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if agent, ok := s.agents[id]; ok {
		return agent, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) FindStaleCreated(ctx context.Context, before time.Time, limit int) ([]models.Order, error) {
	return nil, nil
}

func newTestOrderService(t *testing.T, repo *stubOrderRepo, emitter *stubEmitter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Tx:     stubOrderTx{},
		Events: emitter,
		Config: config.OrdersConfig{TransitionMaxRetries: 3},
	})
	require.NoError(t, err)
	return svc
}

func deliveryOrderFixture(branchID uuid.UUID, status enums.OrderStatus) *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		CustomerID:      uuid.New(),
		CustomerName:    "Nora Vale",
		CustomerEmail:   "nora@example.com",
		BranchID:        branchID,
		OrderType:       enums.OrderTypeDelivery,
		Status:          status,
		TotalCents:      1150,
		DeliveryAddress: ptr("12 Dock Lane"),
	}
}

func ptr[T any](v T) *T { return &v }

func staffActor(branchID uuid.UUID) visibility.Actor {
	return visibility.Actor{ID: uuid.New(), Role: enums.UserRoleStaff, BranchID: &branchID}
}

func TestTransitionDeliveryLifecycle(t *testing.T) {
	branchID := uuid.New()
	agentID := uuid.New()
	repo := &stubOrderRepo{
		order: deliveryOrderFixture(branchID, enums.OrderStatusCreated),
		agents: map[uuid.UUID]*models.User{
			agentID: {ID: agentID, Role: enums.UserRoleDelivery, BranchID: &branchID},
		},
	}
	emitter := &stubEmitter{}
	svc := newTestOrderService(t, repo, emitter)
	ctx := context.Background()
	staff := staffActor(branchID)
	agent := visibility.Actor{ID: agentID, Role: enums.UserRoleDelivery, BranchID: &branchID}

	resp, err := svc.Transition(ctx, staff, repo.order.ID, enums.OrderStatusAccepted, nil)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusAccepted, resp.Status)

	resp, err = svc.Transition(ctx, staff, repo.order.ID, enums.OrderStatusAssigned, &agentID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusAssigned, resp.Status)
	require.NotNil(t, resp.DeliveryAgentID)
	require.Equal(t, agentID, *resp.DeliveryAgentID)
	require.NotNil(t, resp.Delivery)
	require.Equal(t, enums.DeliveryStatusPending, resp.Delivery.Status)

	resp, err = svc.Transition(ctx, agent, repo.order.ID, enums.OrderStatusPickedUp, nil)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPickedUp, resp.Status)
	require.Equal(t, enums.DeliveryStatusPickedUp, resp.Delivery.Status)
	require.NotNil(t, resp.Delivery.PickedUpAt)

	resp, err = svc.Transition(ctx, agent, repo.order.ID, enums.OrderStatusDelivered, nil)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusDelivered, resp.Status)
	require.Equal(t, enums.DeliveryStatusDelivered, resp.Delivery.Status)
	require.NotNil(t, resp.DeliveredAt)

	types := make([]enums.OutboxEventType, 0, len(emitter.events))
	for _, event := range emitter.events {
		types = append(types, event.EventType)
	}
	require.Equal(t, []enums.OutboxEventType{
		enums.EventOrderAccepted,
		enums.EventOrderAssigned,
		enums.EventOrderPickedUp,
		enums.EventOrderDelivered,
	}, types)
}

func TestTransitionSkippingStatesRejected(t *testing.T) {
	branchID := uuid.New()
	repo := &stubOrderRepo{order: deliveryOrderFixture(branchID, enums.OrderStatusCreated)}
	svc := newTestOrderService(t, repo, &stubEmitter{})

	_, err := svc.Transition(context.Background(), staffActor(branchID), repo.order.ID, enums.OrderStatusDelivered, nil)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	require.Equal(t, enums.OrderStatusCreated, repo.order.Status)
}

func TestCancelAfterPickupRejected(t *testing.T) {
	branchID := uuid.New()
	repo := &stubOrderRepo{order: deliveryOrderFixture(branchID, enums.OrderStatusPickedUp)}
	svc := newTestOrderService(t, repo, &stubEmitter{})

	_, err := svc.Transition(context.Background(), staffActor(branchID), repo.order.ID, enums.OrderStatusCancelled, nil)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	require.Equal(t, enums.OrderStatusPickedUp, repo.order.Status)
}

func TestCustomerCancelsOwnCreatedOrder(t *testing.T) {
	branchID := uuid.New()
	repo := &stubOrderRepo{order: deliveryOrderFixture(branchID, enums.OrderStatusCreated)}
	emitter := &stubEmitter{}
	svc := newTestOrderService(t, repo, emitter)
	customer := visibility.Actor{ID: repo.order.CustomerID, Role: enums.UserRoleCustomer}

	resp, err := svc.Transition(context.Background(), customer, repo.order.ID, enums.OrderStatusCancelled, nil)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, resp.Status)
	require.NotNil(t, resp.CancelledAt)
}

func TestCustomerCannotAcceptOrder(t *testing.T) {
	branchID := uuid.New()
	repo := &stubOrderRepo{order: deliveryOrderFixture(branchID, enums.OrderStatusCreated)}
	svc := newTestOrderService(t, repo, &stubEmitter{})
	customer := visibility.Actor{ID: repo.order.CustomerID, Role: enums.UserRoleCustomer}

	_, err := svc.Transition(context.Background(), customer, repo.order.ID, enums.OrderStatusAccepted, nil)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestAssignWrongBranchAgent(t *testing.T) {
	branchID := uuid.New()
	otherBranch := uuid.New()
	agentID := uuid.New()
	repo := &stubOrderRepo{
		order: deliveryOrderFixture(branchID, enums.OrderStatusAccepted),
		agents: map[uuid.UUID]*models.User{
			agentID: {ID: agentID, Role: enums.UserRoleDelivery, BranchID: &otherBranch},
		},
	}
	svc := newTestOrderService(t, repo, &stubEmitter{})

	_, err := svc.Transition(context.Background(), staffActor(branchID), repo.order.ID, enums.OrderStatusAssigned, &agentID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	require.Equal(t, enums.OrderStatusAccepted, repo.order.Status)
	require.Nil(t, repo.order.DeliveryAgentID)
}

func TestAssignNonDeliveryRoleAgent(t *testing.T) {
	branchID := uuid.New()
	agentID := uuid.New()
	repo := &stubOrderRepo{
		order: deliveryOrderFixture(branchID, enums.OrderStatusAccepted),
		agents: map[uuid.UUID]*models.User{
			agentID: {ID: agentID, Role: enums.UserRoleStaff, BranchID: &branchID},
		},
	}
	svc := newTestOrderService(t, repo, &stubEmitter{})

	_, err := svc.Transition(context.Background(), staffActor(branchID), repo.order.ID, enums.OrderStatusAssigned, &agentID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestAssignPickupOrderRejected(t *testing.T) {
	branchID := uuid.New()
	agentID := uuid.New()
	order := deliveryOrderFixture(branchID, enums.OrderStatusAccepted)
	order.OrderType = enums.OrderTypePickup
	order.DeliveryAddress = nil
	repo := &stubOrderRepo{
		order: order,
		agents: map[uuid.UUID]*models.User{
			agentID: {ID: agentID, Role: enums.UserRoleDelivery, BranchID: &branchID},
		},
	}
	svc := newTestOrderService(t, repo, &stubEmitter{})

	_, err := svc.Transition(context.Background(), staffActor(branchID), order.ID, enums.OrderStatusAssigned, &agentID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestPickupOrderCollectedInStore(t *testing.T) {
	branchID := uuid.New()
	order := deliveryOrderFixture(branchID, enums.OrderStatusAccepted)
	order.OrderType = enums.OrderTypePickup
	order.DeliveryAddress = nil
	repo := &stubOrderRepo{order: order}
	svc := newTestOrderService(t, repo, &stubEmitter{})

	resp, err := svc.Transition(context.Background(), staffActor(branchID), order.ID, enums.OrderStatusPickedUp, nil)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPickedUp, resp.Status)
	require.Nil(t, resp.Delivery)
}

func TestUnassignedAgentSeesNothing(t *testing.T) {
	branchID := uuid.New()
	assignedAgent := uuid.New()
	order := deliveryOrderFixture(branchID, enums.OrderStatusAssigned)
	order.DeliveryAgentID = &assignedAgent
	repo := &stubOrderRepo{
		order:    order,
		delivery: &models.Delivery{ID: uuid.New(), OrderID: order.ID, DeliveryAgentID: assignedAgent, Status: enums.DeliveryStatusPending},
	}
	svc := newTestOrderService(t, repo, &stubEmitter{})
	intruder := visibility.Actor{ID: uuid.New(), Role: enums.UserRoleDelivery, BranchID: &branchID}

	_, err := svc.Transition(context.Background(), intruder, order.ID, enums.OrderStatusPickedUp, nil)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestTransitionRetriesSerializationConflicts(t *testing.T) {
	branchID := uuid.New()
	conflict := errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)")
	repo := &stubOrderRepo{
		order:    deliveryOrderFixture(branchID, enums.OrderStatusCreated),
		lockErrs: []error{conflict, conflict},
	}
	svc := newTestOrderService(t, repo, &stubEmitter{})

	resp, err := svc.Transition(context.Background(), staffActor(branchID), repo.order.ID, enums.OrderStatusAccepted, nil)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusAccepted, resp.Status)
}

func TestTransitionConflictRetriesExhausted(t *testing.T) {
	branchID := uuid.New()
	conflict := errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)")
	repo := &stubOrderRepo{
		order:    deliveryOrderFixture(branchID, enums.OrderStatusCreated),
		lockErrs: []error{conflict, conflict, conflict, conflict, conflict},
	}
	svc := newTestOrderService(t, repo, &stubEmitter{})

	_, err := svc.Transition(context.Background(), staffActor(branchID), repo.order.ID, enums.OrderStatusAccepted, nil)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestGetOutOfScopeOrderNotFound(t *testing.T) {
	branchID := uuid.New()
	repo := &stubOrderRepo{order: deliveryOrderFixture(branchID, enums.OrderStatusCreated)}
	svc := newTestOrderService(t, repo, &stubEmitter{})
	stranger := visibility.Actor{ID: uuid.New(), Role: enums.UserRoleCustomer}

	_, err := svc.Get(context.Background(), stranger, repo.order.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
