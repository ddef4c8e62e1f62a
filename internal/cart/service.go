package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	pkgerrors "github.com/brewlinehq/brewline-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the cart ledger operations.
type Service interface {
	Get(ctx context.Context, customerID uuid.UUID) (*Response, error)
	AddItem(ctx context.Context, customerID uuid.UUID, req AddItemRequest) (*Response, error)
	UpdateQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) (*Response, error)
	RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*Response, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
}

type service struct {
	repo    Repository
	coffees coffeeFinder
	tx      txRunner
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, coffees coffeeFinder, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if coffees == nil {
		return nil, fmt.Errorf("coffee finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, coffees: coffees, tx: tx}, nil
}

func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*Response, error) {
	record, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No cart until the first add; present an empty one.
			empty := Response{Items: []ItemResponse{}}
			return &empty, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	resp := FromModel(record)
	return &resp, nil
}

func (s *service) AddItem(ctx context.Context, customerID uuid.UUID, req AddItemRequest) (*Response, error) {
	if req.CoffeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coffee id required")
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	if _, err := s.coffees.FindByID(ctx, req.CoffeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coffee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coffee")
	}

	return s.mutate(ctx, customerID, true, func(ctx context.Context, repo Repository, record *models.CartRecord) error {
		existing, err := repo.FindItemByCoffee(ctx, record.ID, req.CoffeeID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
			}
			item := models.CartItem{
				CartID:   record.ID,
				CoffeeID: req.CoffeeID,
				Quantity: quantity,
			}
			if err := repo.CreateItem(ctx, &item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart item")
			}
			return nil
		}
		// Same coffee again increments the line instead of duplicating it.
		if err := repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment cart item")
		}
		return nil
	})
}

func (s *service) UpdateQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) (*Response, error) {
	return s.mutate(ctx, customerID, false, func(ctx context.Context, repo Repository, record *models.CartRecord) error {
		item, err := s.ownedItem(ctx, repo, record, itemID)
		if err != nil {
			return err
		}
		// Quantity at or below zero removes the line.
		if quantity <= 0 {
			if err := repo.DeleteItem(ctx, item.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
			}
			return nil
		}
		if err := repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*Response, error) {
	return s.mutate(ctx, customerID, false, func(ctx context.Context, repo Repository, record *models.CartRecord) error {
		item, err := s.ownedItem(ctx, repo, record, itemID)
		if err != nil {
			return err
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
		return nil
	})
}

func (s *service) Clear(ctx context.Context, customerID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindForUpdate(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if err := repo.DeleteItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return repo.TouchCart(ctx, record.ID)
	})
}

// mutate runs fn against the locked cart and returns the refreshed view.
func (s *service) mutate(ctx context.Context, customerID uuid.UUID, createIfMissing bool, fn func(ctx context.Context, repo Repository, record *models.CartRecord) error) (*Response, error) {
	var resp *Response
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var record *models.CartRecord
		var err error
		if createIfMissing {
			record, err = repo.FindOrCreateForUpdate(ctx, customerID)
		} else {
			record, err = repo.FindForUpdate(ctx, customerID)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		if err := fn(ctx, repo, record); err != nil {
			return err
		}
		if err := repo.TouchCart(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
		}

		refreshed, err := repo.FindByCustomer(ctx, customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
		}
		view := FromModel(refreshed)
		resp = &view
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ownedItem resolves an item id within the customer's own cart; ids from other
// carts surface as not found so nothing leaks across customers.
func (s *service) ownedItem(ctx context.Context, repo Repository, record *models.CartRecord, itemID uuid.UUID) (*models.CartItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := repo.FindItem(ctx, record.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	return item, nil
}
