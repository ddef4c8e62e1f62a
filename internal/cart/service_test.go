package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	"github.com/brewlinehq/brewline-backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCoffeeFinder struct {
	coffees map[uuid.UUID]*models.Coffee
}

func (s *stubCoffeeFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Coffee, error) {
	if coffee, ok := s.coffees[id]; ok {
		return coffee, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubCartRepo struct {
	record *models.CartRecord
	items  map[uuid.UUID]*models.CartItem
}

func newStubCartRepo(customerID uuid.UUID) *stubCartRepo {
	return &stubCartRepo{
		record: &models.CartRecord{ID: uuid.New(), CustomerID: customerID},
		items:  map[uuid.UUID]*models.CartItem{},
	}
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	if s.record == nil || s.record.CustomerID != customerID {
		return nil, gorm.ErrRecordNotFound
	}
	view := *s.record
	view.Items = nil
	for _, item := range s.items {
		view.Items = append(view.Items, *item)
	}
	return &view, nil
}

func (s *stubCartRepo) FindOrCreateForUpdate(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	if s.record == nil {
		s.record = &models.CartRecord{ID: uuid.New(), CustomerID: customerID}
	}
	return s.FindByCustomer(ctx, customerID)
}

func (s *stubCartRepo) FindForUpdate(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	return s.FindByCustomer(ctx, customerID)
}

func (s *stubCartRepo) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	item, ok := s.items[itemID]
	if !ok || item.CartID != cartID {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (s *stubCartRepo) FindItemByCoffee(ctx context.Context, cartID, coffeeID uuid.UUID) (*models.CartItem, error) {
	for _, item := range s.items {
		if item.CartID == cartID && item.CoffeeID == coffeeID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) CreateItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return nil
}

func (s *stubCartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if item, ok := s.items[itemID]; ok {
		item.Quantity = quantity
	}
	return nil
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	delete(s.items, itemID)
	return nil
}

func (s *stubCartRepo) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	for id, item := range s.items {
		if item.CartID == cartID {
			delete(s.items, id)
		}
	}
	return nil
}

func (s *stubCartRepo) TouchCart(ctx context.Context, cartID uuid.UUID) error { return nil }

func newTestCartService(t *testing.T, repo *stubCartRepo, coffees *stubCoffeeFinder) Service {
	t.Helper()
	svc, err := NewService(repo, coffees, stubTxRunner{})
	require.NoError(t, err)
	return svc
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	customerID := uuid.New()
	coffeeID := uuid.New()
	repo := newStubCartRepo(customerID)
	coffees := &stubCoffeeFinder{coffees: map[uuid.UUID]*models.Coffee{
		coffeeID: {ID: coffeeID, Name: "Flat White", PriceCents: 450, Category: enums.CoffeeCategoryHot, Available: true},
	}}
	svc := newTestCartService(t, repo, coffees)
	ctx := context.Background()

	resp, err := svc.AddItem(ctx, customerID, AddItemRequest{CoffeeID: coffeeID})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, 1, resp.Items[0].Quantity)

	resp, err = svc.AddItem(ctx, customerID, AddItemRequest{CoffeeID: coffeeID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, 3, resp.Items[0].Quantity)
}

func TestAddItemUnknownCoffee(t *testing.T) {
	customerID := uuid.New()
	repo := newStubCartRepo(customerID)
	svc := newTestCartService(t, repo, &stubCoffeeFinder{coffees: map[uuid.UUID]*models.Coffee{}})

	_, err := svc.AddItem(context.Background(), customerID, AddItemRequest{CoffeeID: uuid.New()})
	require.Error(t, err)
	require.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	customerID := uuid.New()
	coffeeID := uuid.New()
	repo := newStubCartRepo(customerID)
	coffees := &stubCoffeeFinder{coffees: map[uuid.UUID]*models.Coffee{
		coffeeID: {ID: coffeeID, Name: "Espresso", PriceCents: 350, Category: enums.CoffeeCategoryHot, Available: true},
	}}
	svc := newTestCartService(t, repo, coffees)
	ctx := context.Background()

	resp, err := svc.AddItem(ctx, customerID, AddItemRequest{CoffeeID: coffeeID})
	require.NoError(t, err)
	itemID := resp.Items[0].ID

	resp, err = svc.UpdateQuantity(ctx, customerID, itemID, 0)
	require.NoError(t, err)
	require.Empty(t, resp.Items)
}

func TestUpdateQuantityForeignItemNotFound(t *testing.T) {
	customerID := uuid.New()
	otherCustomer := uuid.New()
	coffeeID := uuid.New()
	repo := newStubCartRepo(customerID)
	otherRepo := newStubCartRepo(otherCustomer)
	coffees := &stubCoffeeFinder{coffees: map[uuid.UUID]*models.Coffee{
		coffeeID: {ID: coffeeID, Name: "Cold Brew", PriceCents: 500, Category: enums.CoffeeCategoryCold, Available: true},
	}}
	svc := newTestCartService(t, repo, coffees)
	otherSvc := newTestCartService(t, otherRepo, coffees)
	ctx := context.Background()

	foreign, err := otherSvc.AddItem(ctx, otherCustomer, AddItemRequest{CoffeeID: coffeeID})
	require.NoError(t, err)

	// The other customer's item id must not resolve in this customer's cart.
	_, err = svc.AddItem(ctx, customerID, AddItemRequest{CoffeeID: coffeeID})
	require.NoError(t, err)
	_, err = svc.UpdateQuantity(ctx, customerID, foreign.Items[0].ID, 4)
	require.Error(t, err)
	require.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestGetReturnsEmptyCartBeforeFirstAdd(t *testing.T) {
	customerID := uuid.New()
	repo := &stubCartRepo{items: map[uuid.UUID]*models.CartItem{}}
	svc := newTestCartService(t, repo, &stubCoffeeFinder{coffees: map[uuid.UUID]*models.Coffee{}})

	resp, err := svc.Get(context.Background(), customerID)
	require.NoError(t, err)
	require.Empty(t, resp.Items)
}

func TestClearMissingCartIsNoop(t *testing.T) {
	repo := &stubCartRepo{items: map[uuid.UUID]*models.CartItem{}}
	svc := newTestCartService(t, repo, &stubCoffeeFinder{coffees: map[uuid.UUID]*models.Coffee{}})

	require.NoError(t, svc.Clear(context.Background(), uuid.New()))
}
