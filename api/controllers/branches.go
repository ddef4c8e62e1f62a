package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/api/responses"
	"github.com/brewlinehq/brewline-backend/api/validators"
	"github.com/brewlinehq/brewline-backend/internal/branches"
	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/logger"
)

type branchStore interface {
	Create(ctx context.Context, dto branches.CreateBranchDTO) (*models.Branch, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	List(ctx context.Context, activeOnly bool) ([]models.Branch, error)
	Update(ctx context.Context, id uuid.UUID, dto branches.UpdateBranchDTO) (*models.Branch, error)
}

func BranchList(store branchStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := validators.ParseQueryBool(r, "active")
		rows, err := store.List(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapStoreError(err, "branch not found"))
			return
		}
		out := make([]branches.BranchResponse, 0, len(rows))
		for i := range rows {
			out = append(out, branches.FromModel(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func BranchDetail(store branchStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		branch, err := store.FindByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapStoreError(err, "branch not found"))
			return
		}
		responses.WriteSuccess(w, branches.FromModel(branch))
	}
}

// AdminBranchCreate opens a new branch. Admin-gated in the router.
func AdminBranchCreate(store branchStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body branches.CreateBranchDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		branch, err := store.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapStoreError(err, "branch not found"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, branches.FromModel(branch))
	}
}

func AdminBranchUpdate(store branchStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body branches.UpdateBranchDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		branch, err := store.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapStoreError(err, "branch not found"))
			return
		}
		responses.WriteSuccess(w, branches.FromModel(branch))
	}
}
