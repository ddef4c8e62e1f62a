package controllers

import (
	"net/http"

	"github.com/brewlinehq/brewline-backend/api/responses"
	"github.com/brewlinehq/brewline-backend/api/validators"
	"github.com/brewlinehq/brewline-backend/internal/checkout"
	"github.com/brewlinehq/brewline-backend/pkg/logger"
)

// Checkout snapshots the customer's cart into an order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var body checkout.Request
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Checkout(r.Context(), actor.ID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
