package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oduntan/giftregistry-backend/api/responses"
	"github.com/oduntan/giftregistry-backend/api/validators"
	articlesvc "github.com/oduntan/giftregistry-backend/internal/articles"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
	"github.com/oduntan/giftregistry-backend/pkg/pagination"
)

// ArticleList serves the public blog listing, newest first.
func ArticleList(svc articlesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), articlesvc.ListParams{
			TagSlug: r.URL.Query().Get("tag"),
			Limit:   limit,
			Cursor:  r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// ArticleFetch serves one published article and bumps its view count.
func ArticleFetch(svc articlesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		article, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, article)
	}
}

// TagList serves the blog tag cloud.
func TagList(svc articlesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := svc.ListTags(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tags)
	}
}

// ArticleCreate publishes or drafts a new article. Admin only.
func ArticleCreate(svc articlesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := ownerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload articlesvc.ArticleInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		article, err := svc.Create(r.Context(), adminID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, article)
	}
}

// ArticleUpdate edits an existing article. Admin only.
func ArticleUpdate(svc articlesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articleID, err := validators.ParsePathUUID(chi.URLParam(r, "articleId"), "article_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload articlesvc.ArticleInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		article, err := svc.Update(r.Context(), articleID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, article)
	}
}
