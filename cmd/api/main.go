package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oduntan/giftregistry-backend/api/controllers"
	"github.com/oduntan/giftregistry-backend/api/routes"
	"github.com/oduntan/giftregistry-backend/internal/accounts"
	"github.com/oduntan/giftregistry-backend/internal/articles"
	"github.com/oduntan/giftregistry-backend/internal/cart"
	"github.com/oduntan/giftregistry-backend/internal/catalog"
	checkoutsvc "github.com/oduntan/giftregistry-backend/internal/checkout"
	"github.com/oduntan/giftregistry-backend/internal/discounts"
	"github.com/oduntan/giftregistry-backend/internal/newsletter"
	"github.com/oduntan/giftregistry-backend/internal/orders"
	"github.com/oduntan/giftregistry-backend/internal/payments"
	"github.com/oduntan/giftregistry-backend/internal/registries"
	"github.com/oduntan/giftregistry-backend/pkg/config"
	"github.com/oduntan/giftregistry-backend/pkg/db"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
	"github.com/oduntan/giftregistry-backend/pkg/metrics"
	"github.com/oduntan/giftregistry-backend/pkg/migrate"
	"github.com/oduntan/giftregistry-backend/pkg/paystack"
	"github.com/oduntan/giftregistry-backend/pkg/redis"
	"github.com/oduntan/giftregistry-backend/pkg/session"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	paystackClient, err := paystack.NewClient(context.Background(), cfg.Paystack, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create paystack client", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	paymentMetrics := metrics.NewPaymentMetrics(promRegistry)

	sessionStore, err := session.NewRedisStore(redisClient, cfg.Session.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	accountsRepo := accounts.NewRepository(gdb)
	registriesRepo := registries.NewRepository(gdb)
	catalogRepo := catalog.NewRepository(gdb)
	articlesRepo := articles.NewRepository(gdb)
	ordersRepo := orders.NewRepository(gdb)
	discountsRepo := discounts.NewRepository(gdb)
	cartRepo := cart.NewRepository(gdb)
	newsletterRepo := newsletter.NewRepository(gdb)

	numbers, err := orders.NewNumberGenerator(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create number generator", err)
		os.Exit(1)
	}
	gatewayVerifier, err := payments.NewPaystackVerifier(paystackClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment verifier", err)
		os.Exit(1)
	}

	accountsSvc, err := accounts.NewService(accountsRepo, cfg.JWT, logg)
	exitOnServiceError(logg, "accounts", err)
	discountsSvc, err := discounts.NewService(discountsRepo)
	exitOnServiceError(logg, "discounts", err)
	cartSvc, err := cart.NewService(cartRepo, sessionStore, discountsSvc, logg)
	exitOnServiceError(logg, "cart", err)
	registriesSvc, err := registries.NewService(registriesRepo, catalogRepo, ordersRepo, logg)
	exitOnServiceError(logg, "registries", err)
	catalogSvc, err := catalog.NewService(catalogRepo, logg)
	exitOnServiceError(logg, "catalog", err)
	articlesSvc, err := articles.NewService(articlesRepo, logg)
	exitOnServiceError(logg, "articles", err)
	newsletterSvc, err := newsletter.NewService(newsletterRepo, logg)
	exitOnServiceError(logg, "newsletter", err)
	checkoutSvc, err := checkoutsvc.NewService(cartSvc, ordersRepo, registriesRepo, numbers, discountsSvc, dbClient, paystackClient, paymentMetrics, logg)
	exitOnServiceError(logg, "checkout", err)
	paymentsSvc, err := payments.NewService(ordersRepo, gatewayVerifier, dbClient, paymentMetrics, logg)
	exitOnServiceError(logg, "payments", err)

	pingers := map[string]controllers.Pinger{
		"postgres": dbClient,
		"redis":    redisClient,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, pingers, promRegistry, routes.Services{
			Accounts:   accountsSvc,
			Registries: registriesSvc,
			Catalog:    catalogSvc,
			Articles:   articlesSvc,
			Newsletter: newsletterSvc,
			Cart:       cartSvc,
			Checkout:   checkoutSvc,
			Payments:   paymentsSvc,
			Discounts:  discountsSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnServiceError(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	ctx := logg.WithField(context.Background(), "service", name)
	logg.Error(ctx, "failed to create service", err)
	os.Exit(1)
}
