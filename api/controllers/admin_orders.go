package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gardenaqua/gardenaqua-backend/api/responses"
	"github.com/gardenaqua/gardenaqua-backend/api/validators"
	orderssvc "github.com/gardenaqua/gardenaqua-backend/internal/orders"
	"github.com/gardenaqua/gardenaqua-backend/pkg/enums"
	pkgerrors "github.com/gardenaqua/gardenaqua-backend/pkg/errors"
	"github.com/gardenaqua/gardenaqua-backend/pkg/logger"
)

type statusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminOrderStatus moves an order through its lifecycle. Sits behind the
// operator token middleware.
func AdminOrderStatus(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload statusUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status"))
			return
		}

		view, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "orderNumber"), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
