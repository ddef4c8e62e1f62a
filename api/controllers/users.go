package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/brewlinehq/brewline-backend/api/responses"
	"github.com/brewlinehq/brewline-backend/internal/users"
	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/logger"
)

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CurrentUser returns the authenticated account's profile.
func CurrentUser(store userFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		user, err := store.FindByID(r.Context(), actor.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapStoreError(err, "user not found"))
			return
		}
		responses.WriteSuccess(w, users.FromModel(user))
	}
}
