package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/oduntan/giftregistry-backend/api/responses"
	paymentsvc "github.com/oduntan/giftregistry-backend/internal/payments"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
)

// PaymentConfirm is the browser redirect target after the gateway checkout
// page. It reconciles the referenced transaction and reports its state.
func PaymentConfirm(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reference := strings.TrimSpace(r.URL.Query().Get("reference"))
		if reference == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "reference is required"))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithReference(ctx, reference)
		}

		receipt, err := svc.Confirm(ctx, reference)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

// PaymentWebhook receives provider event deliveries. Deliveries are
// at-least-once so the handler must stay idempotent end to end.
func PaymentWebhook(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event paymentsvc.WebhookEvent

		switch r.Method {
		case http.MethodPost:
			if err := decodeWebhookBody(r, &event); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		default:
			// Some provider dashboards probe the endpoint with GET carrying
			// the reference in the query string.
			event = paymentsvc.WebhookEvent{
				Event: "charge.success",
				Data: paymentsvc.WebhookData{
					Reference: strings.TrimSpace(r.URL.Query().Get("reference")),
				},
			}
		}

		ctx := r.Context()
		if logg != nil && event.Data.Reference != "" {
			ctx = logg.WithReference(ctx, event.Data.Reference)
		}

		if err := svc.HandleWebhook(ctx, event); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// decodeWebhookBody reads the event leniently. Provider payloads carry many
// fields beyond the ones reconciliation uses, so unknown keys are fine.
func decodeWebhookBody(r *http.Request, dest *paymentsvc.WebhookEvent) error {
	defer io.Copy(io.Discard, r.Body)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook body")
	}
	return nil
}
