package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giftly/giftly-backend/api/controllers"
	"github.com/giftly/giftly-backend/api/middleware"
	"github.com/giftly/giftly-backend/internal/auth"
	cartsvc "github.com/giftly/giftly-backend/internal/cart"
	checkoutsvc "github.com/giftly/giftly-backend/internal/checkout"
	ordersvc "github.com/giftly/giftly-backend/internal/orders"
	product "github.com/giftly/giftly-backend/internal/products"
	"github.com/giftly/giftly-backend/internal/sellers"
	"github.com/giftly/giftly-backend/pkg/auth/session"
	"github.com/giftly/giftly-backend/pkg/config"
	"github.com/giftly/giftly-backend/pkg/db"
	"github.com/giftly/giftly-backend/pkg/logger"
	"github.com/giftly/giftly-backend/pkg/metrics"
	redisclient "github.com/giftly/giftly-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Services are interfaces so
// router tests can swap in stubs.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *db.Client
	Redis        *redisclient.Client
	Sessions     session.AccessSessionChecker
	Registry     *prometheus.Registry
	HTTPMetrics  *metrics.HTTPMetrics
	AuthService  auth.Service
	RegisterSvc  auth.RegisterService
	ProductSvc   product.Service
	SellerSvc    sellers.Service
	CartSvc      cartsvc.Service
	CheckoutSvc  checkoutsvc.Service
	OrderSvc     ordersvc.Service
}

// NewRouter wires middleware, health probes, metrics, and the versioned API.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Redis, logg))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).Post("/register", controllers.AuthRegister(d.RegisterSvc, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(d.AuthService, logg))
			r.Get("/me", controllers.AuthMe(d.AuthService, logg))
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(d.ProductSvc, logg))
		r.Get("/{productId}", controllers.ProductDetail(d.ProductSvc, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(d.CartSvc, logg))
			r.Post("/items", controllers.CartAddItem(d.CartSvc, logg))
			r.Put("/items/{productId}", controllers.CartUpdateItem(d.CartSvc, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(d.CartSvc, logg))
			r.Delete("/", controllers.CartClear(d.CartSvc, logg))
		})

		r.Route("/api/v1/checkout", func(r chi.Router) {
			r.Get("/preview", controllers.CheckoutPreview(d.CheckoutSvc, logg))
			r.Post("/", controllers.CheckoutSubmit(d.CheckoutSvc, logg))
		})

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.BuyerOrderList(d.OrderSvc, logg))
			r.Get("/{orderId}", controllers.BuyerOrderDetail(d.OrderSvc, logg))
		})

		r.Route("/api/v1/sellers", func(r chi.Router) {
			r.Post("/register", controllers.SellerRegister(d.SellerSvc, logg))
			r.Get("/me", controllers.SellerProfile(d.SellerSvc, logg))
			r.With(middleware.RequireSeller(logg)).Put("/me", controllers.SellerUpdateProfile(d.SellerSvc, logg))
		})

		r.Route("/api/v1/seller", func(r chi.Router) {
			r.Use(middleware.RequireSeller(logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.SellerListProducts(d.ProductSvc, logg))
				r.Post("/", controllers.SellerCreateProduct(d.ProductSvc, logg))
				r.Put("/{productId}", controllers.SellerUpdateProduct(d.ProductSvc, logg))
				r.Delete("/{productId}", controllers.SellerDeleteProduct(d.ProductSvc, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.SellerOrderList(d.OrderSvc, logg))
				r.Get("/{orderId}", controllers.SellerOrderDetail(d.OrderSvc, logg))
				r.Patch("/{orderId}/status", controllers.SellerOrderUpdateStatus(d.OrderSvc, logg))
			})
		})

		r.Route("/api/v1/admin/sellers", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))
			r.Get("/", controllers.AdminSellerList(d.SellerSvc, logg))
			r.Post("/{sellerId}/approve", controllers.AdminSellerApprove(d.SellerSvc, logg))
			r.Post("/{sellerId}/reject", controllers.AdminSellerReject(d.SellerSvc, logg))
		})
	})

	return r
}
