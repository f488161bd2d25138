package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gardenaqua/gardenaqua-backend/api/responses"
	"github.com/gardenaqua/gardenaqua-backend/api/validators"
	orderssvc "github.com/gardenaqua/gardenaqua-backend/internal/orders"
	"github.com/gardenaqua/gardenaqua-backend/pkg/logger"
)

// OrderByNumber returns the confirmation payload for a just-placed order.
func OrderByNumber(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.GetByNumber(r.Context(), chi.URLParam(r, "orderNumber"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type lookupRequest struct {
	OrderNumber string `json:"order_number" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
}

// OrderLookup lets a guest retrieve an order with its number plus the email
// it was placed under.
func OrderLookup(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload lookupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Lookup(r.Context(), payload.OrderNumber, payload.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
