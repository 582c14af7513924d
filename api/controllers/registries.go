package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oduntan/giftregistry-backend/api/middleware"
	"github.com/oduntan/giftregistry-backend/api/responses"
	"github.com/oduntan/giftregistry-backend/api/validators"
	registrysvc "github.com/oduntan/giftregistry-backend/internal/registries"
	"github.com/oduntan/giftregistry-backend/pkg/enums"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
)

type registryCreateRequest struct {
	Name        string  `json:"name" validate:"required"`
	Kind        string  `json:"kind" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Hashtag     *string `json:"hashtag,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

type registryProductRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// RegistryCreate opens a new registry for the authenticated owner.
func RegistryCreate(svc registrysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload registryCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseRegistryKind(payload.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown registry kind"))
			return
		}

		registry, err := svc.Create(r.Context(), ownerID, registrysvc.CreateInput{
			Name:        payload.Name,
			Kind:        kind,
			Description: payload.Description,
			Hashtag:     payload.Hashtag,
			ImageURL:    payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, registry)
	}
}

// RegistryFetch serves the public registry page by slug.
func RegistryFetch(svc registrysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// RegistryListMine lists the authenticated owner's registries.
func RegistryListMine(svc registrysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		registries, err := svc.ListMine(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, registries)
	}
}

// RegistryUpdate edits registry fields for the owner.
func RegistryUpdate(svc registrysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		registryID, err := validators.ParsePathUUID(chi.URLParam(r, "registryId"), "registry_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload registrysvc.UpdateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		registry, err := svc.Update(r.Context(), ownerID, registryID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, registry)
	}
}

// RegistryAddProduct puts a catalog product onto the owner's wishlist.
func RegistryAddProduct(svc registrysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		registryID, err := validators.ParsePathUUID(chi.URLParam(r, "registryId"), "registry_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload registryProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rp, err := svc.AddProduct(r.Context(), ownerID, registryID, payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, rp)
	}
}

// RegistryRemoveProduct takes an unpurchased gift off the wishlist.
func RegistryRemoveProduct(svc registrysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		registryID, err := validators.ParsePathUUID(chi.URLParam(r, "registryId"), "registry_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		registryProductID, err := validators.ParsePathUUID(chi.URLParam(r, "registryProductId"), "registry_product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveProduct(r.Context(), ownerID, registryID, registryProductID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// RegistrySetDelivery saves where purchased gifts ship to.
func RegistrySetDelivery(svc registrysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		registryID, err := validators.ParsePathUUID(chi.URLParam(r, "registryId"), "registry_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload registrysvc.DeliveryInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetDeliveryAddress(r.Context(), ownerID, registryID, payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "saved"})
	}
}

// RegistrySetFund configures the registry's honeymoon fund.
func RegistrySetFund(svc registrysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		registryID, err := validators.ParsePathUUID(chi.URLParam(r, "registryId"), "registry_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload registrysvc.FundInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetFund(r.Context(), ownerID, registryID, payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "saved"})
	}
}

func ownerIDFromRequest(r *http.Request) (uuid.UUID, error) {
	ownerID := middleware.UserIDFromContext(r.Context())
	if ownerID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return ownerID, nil
}
