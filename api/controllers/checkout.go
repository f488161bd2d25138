package controllers

import (
	"net/http"
	"strings"

	"github.com/gardenaqua/gardenaqua-backend/api/responses"
	"github.com/gardenaqua/gardenaqua-backend/api/validators"
	checkoutsvc "github.com/gardenaqua/gardenaqua-backend/internal/checkout"
	"github.com/gardenaqua/gardenaqua-backend/pkg/logger"
)

type checkoutRequest struct {
	CustomerName string  `json:"customer_name" validate:"required,min=2,max=120"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,phone"`
	Address      string  `json:"address" validate:"required,min=5,max=250"`
	City         string  `json:"city" validate:"required,min=2,max=80"`
	PostalCode   string  `json:"postal_code" validate:"required,min=3,max=12"`
	Notes        string  `json:"notes,omitempty" validate:"max=500"`
}

// Checkout converts the session cart into an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		phone := payload.Phone
		if phone != nil {
			trimmed := strings.TrimSpace(*phone)
			phone = &trimmed
		}

		result, err := svc.Checkout(r.Context(), session, checkoutsvc.Input{
			CustomerName: payload.CustomerName,
			Email:        payload.Email,
			Phone:        phone,
			Address:      payload.Address,
			City:         payload.City,
			PostalCode:   payload.PostalCode,
			Notes:        payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
