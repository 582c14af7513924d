package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oduntan/giftregistry-backend/api/responses"
	"github.com/oduntan/giftregistry-backend/api/validators"
	discountsvc "github.com/oduntan/giftregistry-backend/internal/discounts"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
)

// DiscountCreate mints a new promo code. Admin only.
func DiscountCreate(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := ownerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload discountsvc.CreateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := svc.Create(r.Context(), adminID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, discount)
	}
}

// DiscountDeactivate retires a promo code. Admin only.
func DiscountDeactivate(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Deactivate(r.Context(), chi.URLParam(r, "code")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
