package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brewlinehq/brewline-backend/api/controllers"
	"github.com/brewlinehq/brewline-backend/api/middleware"
	"github.com/brewlinehq/brewline-backend/internal/auth"
	"github.com/brewlinehq/brewline-backend/internal/branches"
	"github.com/brewlinehq/brewline-backend/internal/cart"
	"github.com/brewlinehq/brewline-backend/internal/catalog"
	checkoutsvc "github.com/brewlinehq/brewline-backend/internal/checkout"
	"github.com/brewlinehq/brewline-backend/internal/deliveries"
	"github.com/brewlinehq/brewline-backend/internal/orders"
	"github.com/brewlinehq/brewline-backend/internal/users"
	"github.com/brewlinehq/brewline-backend/pkg/auth/session"
	"github.com/brewlinehq/brewline-backend/pkg/config"
	"github.com/brewlinehq/brewline-backend/pkg/db"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	"github.com/brewlinehq/brewline-backend/pkg/logger"
	"github.com/brewlinehq/brewline-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions sessionManager

	AuthService     auth.Service
	RegisterService auth.RegisterService
	Users           *users.Repository
	Branches        *branches.Repository
	Coffees         *catalog.Repository

	CartService     cart.Service
	CheckoutService checkoutsvc.Service
	OrderService    orders.Service
	DeliveryService deliveries.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg), middleware.Idempotency(deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Sessions, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/users/me", controllers.CurrentUser(deps.Users, logg))

		r.Route("/branches", func(r chi.Router) {
			r.Get("/", controllers.BranchList(deps.Branches, logg))
			r.Get("/{branchId}", controllers.BranchDetail(deps.Branches, logg))
		})

		r.Route("/coffees", func(r chi.Router) {
			r.Get("/", controllers.CoffeeList(deps.Coffees, logg))
			r.Get("/{coffeeId}", controllers.CoffeeDetail(deps.Coffees, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, enums.UserRoleCustomer))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.CartService, logg))
				r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
				r.Patch("/items/{itemId}", controllers.CartUpdateItem(deps.CartService, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.CartService, logg))
				r.Delete("/", controllers.CartClear(deps.CartService, logg))
			})
			r.Post("/checkout", controllers.Checkout(deps.CheckoutService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrderService, logg))
			r.Post("/{orderId}/transition", controllers.OrderTransition(deps.OrderService, logg))
		})

		r.Route("/deliveries", func(r chi.Router) {
			r.Get("/", controllers.DeliveryList(deps.DeliveryService, logg))
			r.Get("/{deliveryId}", controllers.DeliveryDetail(deps.DeliveryService, logg))
			r.With(middleware.RequireRoles(logg, enums.UserRoleDelivery)).
				Post("/{deliveryId}/transit", controllers.DeliveryStartTransit(deps.DeliveryService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, enums.UserRoleAdmin))
			r.Post("/users", controllers.AdminCreateStaff(deps.RegisterService, logg))
			r.Post("/branches", controllers.AdminBranchCreate(deps.Branches, logg))
			r.Patch("/branches/{branchId}", controllers.AdminBranchUpdate(deps.Branches, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, enums.UserRoleAdmin, enums.UserRoleManager))
			r.Post("/coffees", controllers.AdminCoffeeCreate(deps.Coffees, logg))
			r.Patch("/coffees/{coffeeId}", controllers.AdminCoffeeUpdate(deps.Coffees, logg))
		})
	})

	return r
}
