package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/api/responses"
	"github.com/brewlinehq/brewline-backend/api/validators"
	"github.com/brewlinehq/brewline-backend/internal/catalog"
	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	pkgerrors "github.com/brewlinehq/brewline-backend/pkg/errors"
	"github.com/brewlinehq/brewline-backend/pkg/logger"
)

type coffeeStore interface {
	Create(ctx context.Context, dto catalog.CreateCoffeeDTO) (*models.Coffee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coffee, error)
	List(ctx context.Context, filters catalog.ListFilters) ([]models.Coffee, error)
	Update(ctx context.Context, id uuid.UUID, dto catalog.UpdateCoffeeDTO) (*models.Coffee, error)
}

func CoffeeList(store coffeeStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := catalog.ListFilters{
			AvailableOnly: validators.ParseQueryBool(r, "available"),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category, err := enums.ParseCoffeeCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			filters.Category = &category
		}

		rows, err := store.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapStoreError(err, "coffee not found"))
			return
		}
		out := make([]catalog.CoffeeResponse, 0, len(rows))
		for i := range rows {
			out = append(out, catalog.FromModel(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func CoffeeDetail(store coffeeStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "coffeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		coffee, err := store.FindByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapStoreError(err, "coffee not found"))
			return
		}
		responses.WriteSuccess(w, catalog.FromModel(coffee))
	}
}

// AdminCoffeeCreate adds a menu item. Admin/manager-gated in the router.
func AdminCoffeeCreate(store coffeeStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body catalog.CreateCoffeeDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !body.Category.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid category"))
			return
		}
		coffee, err := store.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapStoreError(err, "coffee not found"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, catalog.FromModel(coffee))
	}
}

func AdminCoffeeUpdate(store coffeeStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "coffeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body catalog.UpdateCoffeeDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.Category != nil && !body.Category.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid category"))
			return
		}
		coffee, err := store.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapStoreError(err, "coffee not found"))
			return
		}
		responses.WriteSuccess(w, catalog.FromModel(coffee))
	}
}
