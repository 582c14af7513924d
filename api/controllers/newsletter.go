package controllers

import (
	"net/http"

	"github.com/oduntan/giftregistry-backend/api/responses"
	"github.com/oduntan/giftregistry-backend/api/validators"
	newslettersvc "github.com/oduntan/giftregistry-backend/internal/newsletter"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
)

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NewsletterSubscribe records a signup from the site footer form.
func NewsletterSubscribe(svc newslettersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload subscribeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Subscribe(r.Context(), payload.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "subscribed"})
	}
}
