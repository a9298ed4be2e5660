package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/giftly/giftly-backend/api/routes"
	"github.com/giftly/giftly-backend/internal/auth"
	cartsvc "github.com/giftly/giftly-backend/internal/cart"
	checkoutsvc "github.com/giftly/giftly-backend/internal/checkout"
	ordersvc "github.com/giftly/giftly-backend/internal/orders"
	product "github.com/giftly/giftly-backend/internal/products"
	"github.com/giftly/giftly-backend/internal/sellers"
	"github.com/giftly/giftly-backend/internal/users"
	"github.com/giftly/giftly-backend/pkg/auth/session"
	"github.com/giftly/giftly-backend/pkg/config"
	"github.com/giftly/giftly-backend/pkg/db"
	"github.com/giftly/giftly-backend/pkg/enums"
	"github.com/giftly/giftly-backend/pkg/logger"
	"github.com/giftly/giftly-backend/pkg/metrics"
	"github.com/giftly/giftly-backend/pkg/migrate"
	redisclient "github.com/giftly/giftly-backend/pkg/redis"
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

	redisClient, err := redisclient.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	sellerRepo := sellers.NewRepository(dbClient.DB())
	productRepo := product.NewRepository(dbClient.DB())
	orderRepo := ordersvc.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SellerRepo:     sellerRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	sellerService, err := sellers.NewService(sellerRepo, userRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create seller service", err)
		os.Exit(1)
	}

	productService, err := product.NewService(productRepo, dbClient, sellerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	cartStore, err := cartsvc.NewStore(redisClient, cfg.Cart.SnapshotTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{
		Store:    cartStore,
		Products: productService,
		Policy:   cartsvc.PolicyFromConfig(cfg.Cart),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	currency, err := enums.ParseCurrency(cfg.Checkout.Currency)
	if err != nil {
		logg.Error(context.Background(), "invalid checkout currency", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		CartStore:   cartStore,
		OrderRepo:   orderRepo,
		ProductRepo: productRepo,
		DB:          dbClient,
		Policy:      checkoutsvc.PolicyFromConfig(cfg.Checkout),
		Currency:    currency,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := ordersvc.NewService(orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

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
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Registry:    registry,
			HTTPMetrics: httpMetrics,
			AuthService: authService,
			RegisterSvc: registerService,
			ProductSvc:  productService,
			SellerSvc:   sellerService,
			CartSvc:     cartService,
			CheckoutSvc: checkoutService,
			OrderSvc:    orderService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
