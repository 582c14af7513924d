package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/oduntan/giftregistry-backend/api/responses"
	"github.com/oduntan/giftregistry-backend/api/validators"
	checkoutsvc "github.com/oduntan/giftregistry-backend/internal/checkout"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
)

type checkoutRequest struct {
	FirstName   string  `json:"first_name" validate:"required"`
	LastName    string  `json:"last_name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Message     *string `json:"message,omitempty"`
}

type donationRequest struct {
	RegistryID  uuid.UUID `json:"registry_id" validate:"required"`
	AmountKobo  int64     `json:"amount_kobo" validate:"required,gt=0"`
	FirstName   string    `json:"first_name" validate:"required"`
	LastName    string    `json:"last_name" validate:"required"`
	Email       string    `json:"email" validate:"required,email"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Message     *string   `json:"message,omitempty"`
}

// Checkout converts the session cart into orders and opens the gateway charge.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), sessionID, checkoutsvc.CustomerInput{
			FirstName:   payload.FirstName,
			LastName:    payload.LastName,
			Email:       payload.Email,
			PhoneNumber: payload.PhoneNumber,
			Message:     payload.Message,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// Donate records a cash contribution to one registry and opens the charge.
func Donate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload donationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Donate(r.Context(), checkoutsvc.DonationInput{
			RegistryID: payload.RegistryID,
			AmountKobo: payload.AmountKobo,
			Customer: checkoutsvc.CustomerInput{
				FirstName:   payload.FirstName,
				LastName:    payload.LastName,
				Email:       payload.Email,
				PhoneNumber: payload.PhoneNumber,
				Message:     payload.Message,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
