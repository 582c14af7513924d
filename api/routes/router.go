package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oduntan/giftregistry-backend/api/controllers"
	"github.com/oduntan/giftregistry-backend/api/middleware"
	accountsvc "github.com/oduntan/giftregistry-backend/internal/accounts"
	articlesvc "github.com/oduntan/giftregistry-backend/internal/articles"
	cartsvc "github.com/oduntan/giftregistry-backend/internal/cart"
	catalogsvc "github.com/oduntan/giftregistry-backend/internal/catalog"
	checkoutsvc "github.com/oduntan/giftregistry-backend/internal/checkout"
	discountsvc "github.com/oduntan/giftregistry-backend/internal/discounts"
	newslettersvc "github.com/oduntan/giftregistry-backend/internal/newsletter"
	paymentsvc "github.com/oduntan/giftregistry-backend/internal/payments"
	registrysvc "github.com/oduntan/giftregistry-backend/internal/registries"
	"github.com/oduntan/giftregistry-backend/pkg/config"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
)

// Services bundles everything the router hands to controllers.
type Services struct {
	Accounts   accountsvc.Service
	Registries registrysvc.Service
	Catalog    catalogsvc.Service
	Articles   articlesvc.Service
	Newsletter newslettersvc.Service
	Cart       cartsvc.Service
	Checkout   checkoutsvc.Service
	Payments   paymentsvc.Service
	Discounts  discountsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers map[string]controllers.Pinger,
	promRegistry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})
	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(svcs.Accounts, logg))
			r.Post("/login", controllers.AuthLogin(svcs.Accounts, logg))
		})

		r.Get("/products", controllers.ProductList(svcs.Catalog, logg))
		r.Get("/products/{slug}", controllers.ProductFetch(svcs.Catalog, logg))
		r.Get("/categories", controllers.CategoryList(svcs.Catalog, logg))

		r.Get("/registries/{slug}", controllers.RegistryFetch(svcs.Registries, logg))

		r.Get("/articles", controllers.ArticleList(svcs.Articles, logg))
		r.Get("/articles/{slug}", controllers.ArticleFetch(svcs.Articles, logg))
		r.Get("/tags", controllers.TagList(svcs.Articles, logg))

		r.Post("/newsletter", controllers.NewsletterSubscribe(svcs.Newsletter, logg))

		// Paystack redirects the shopper to confirm and posts webhooks
		// server to server, so neither route sits behind the session.
		r.Get("/payments/confirm", controllers.PaymentConfirm(svcs.Payments, logg))
		r.Get("/payments/webhook", controllers.PaymentWebhook(svcs.Payments, logg))
		r.Post("/payments/webhook", controllers.PaymentWebhook(svcs.Payments, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.Session, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svcs.Cart, logg))
				r.Post("/items", controllers.CartAdd(svcs.Cart, logg))
				r.Delete("/items/{registryProductId}", controllers.CartRemove(svcs.Cart, logg))
				r.Delete("/", controllers.CartClear(svcs.Cart, logg))
				r.Post("/discount", controllers.CartApplyDiscount(svcs.Cart, logg))
			})
			r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))
			r.Post("/donations", controllers.Donate(svcs.Checkout, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			// Registered flat so the public GET /registries/{slug}
			// above keeps matching on the same segment.
			r.Post("/registries", controllers.RegistryCreate(svcs.Registries, logg))
			r.Get("/registries", controllers.RegistryListMine(svcs.Registries, logg))
			r.Patch("/registries/{registryId}", controllers.RegistryUpdate(svcs.Registries, logg))
			r.Post("/registries/{registryId}/products", controllers.RegistryAddProduct(svcs.Registries, logg))
			r.Delete("/registries/{registryId}/products/{registryProductId}", controllers.RegistryRemoveProduct(svcs.Registries, logg))
			r.Put("/registries/{registryId}/delivery", controllers.RegistrySetDelivery(svcs.Registries, logg))
			r.Put("/registries/{registryId}/fund", controllers.RegistrySetFund(svcs.Registries, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Post("/products", controllers.ProductCreate(svcs.Catalog, logg))
		r.Patch("/products/{productId}", controllers.ProductUpdate(svcs.Catalog, logg))
		r.Post("/categories", controllers.CategoryCreate(svcs.Catalog, logg))
		r.Post("/discounts", controllers.DiscountCreate(svcs.Discounts, logg))
		r.Delete("/discounts/{code}", controllers.DiscountDeactivate(svcs.Discounts, logg))
		r.Post("/articles", controllers.ArticleCreate(svcs.Articles, logg))
		r.Patch("/articles/{articleId}", controllers.ArticleUpdate(svcs.Articles, logg))
	})

	return r
}
