package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/merchlane/merchportal-backend/api/controllers"
	"github.com/merchlane/merchportal-backend/api/middleware"
	adminsvc "github.com/merchlane/merchportal-backend/internal/admin"
	"github.com/merchlane/merchportal-backend/internal/auth"
	"github.com/merchlane/merchportal-backend/internal/cart"
	"github.com/merchlane/merchportal-backend/internal/departments"
	distsvc "github.com/merchlane/merchportal-backend/internal/distributions"
	ordersvc "github.com/merchlane/merchportal-backend/internal/grouporders"
	"github.com/merchlane/merchportal-backend/internal/products"
	reviewsvc "github.com/merchlane/merchportal-backend/internal/reviews"
	"github.com/merchlane/merchportal-backend/internal/wishlist"
	"github.com/merchlane/merchportal-backend/pkg/auth/session"
	"github.com/merchlane/merchportal-backend/pkg/authz"
	"github.com/merchlane/merchportal-backend/pkg/config"
	"github.com/merchlane/merchportal-backend/pkg/db"
	"github.com/merchlane/merchportal-backend/pkg/logger"
	"github.com/merchlane/merchportal-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager sessionManager,
	authService auth.Service,
	registerService auth.RegisterService,
	departmentsRepo *departments.Repository,
	productService products.Service,
	cartService cart.Service,
	wishlistService wishlist.Service,
	orderService ordersvc.Service,
	distributionService distsvc.Service,
	reviewService reviewsvc.Service,
	adminService adminsvc.Service,
) http.Handler {
	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

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
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerService, authService, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
		r.With(middleware.Auth(cfg.JWT, sessionManager, logg)).Get("/me", controllers.Me(authService, logg))
	})

	// Catalog browsing stays open so members can shop before signing in.
	r.Get("/api/v1/departments", controllers.DepartmentList(departmentsRepo, logg))
	r.Get("/api/v1/products", controllers.ProductList(productService, logg))
	r.Get("/api/v1/products/{productId}", controllers.ProductDetail(productService, logg))
	r.Get("/api/v1/products/{productId}/reviews", controllers.ProductReviews(reviewService, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
		})

		r.Route("/v1/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(wishlistService, logg))
			r.Post("/{productId}", controllers.WishlistAddItem(wishlistService, logg))
			r.Delete("/{productId}", controllers.WishlistRemoveItem(wishlistService, logg))
		})

		r.Route("/v1/orders/group", func(r chi.Router) {
			r.With(middleware.RequirePermission(authz.PermCreateGroupOrder, logg)).Post("/", controllers.GroupOrderCreate(orderService, logg))
			r.Get("/", controllers.GroupOrderList(orderService, logg))
			r.Get("/{orderId}", controllers.GroupOrderDetail(orderService, logg))
			r.With(middleware.RequirePermission(authz.PermFinalizeGroupOrder, logg)).Post("/{orderId}/finalize", controllers.GroupOrderFinalize(orderService, logg))
			r.With(middleware.RequirePermission(authz.PermCancelGroupOrder, logg)).Post("/{orderId}/cancel", controllers.GroupOrderCancel(orderService, logg))
			r.With(middleware.RequirePermission(authz.PermInviteParticipant, logg)).Post("/{orderId}/invite", controllers.GroupOrderInvite(orderService, logg))
			r.Post("/{orderId}/respond", controllers.GroupOrderRespond(orderService, logg))
		})

		r.Route("/v1/distributions", func(r chi.Router) {
			r.With(middleware.RequirePermission(authz.PermViewAllDistribution, logg)).Get("/all", controllers.DistributionListAll(distributionService, logg))
			r.Get("/user", controllers.DistributionListMine(distributionService, logg))
			r.With(middleware.RequirePermission(authz.PermScheduleDelivery, logg)).Post("/{itemId}/schedule", controllers.DistributionSchedule(distributionService, logg))
			r.With(middleware.RequirePermission(authz.PermConfirmDelivery, logg)).Post("/{itemId}/confirm", controllers.DistributionConfirm(distributionService, logg))
			r.With(middleware.RequirePermission(authz.PermScheduleDelivery, logg)).Post("/{itemId}/cancel", controllers.DistributionCancel(distributionService, logg))
		})

		r.Route("/v1/reviews", func(r chi.Router) {
			r.Post("/", controllers.ReviewSubmit(reviewService, logg))
			r.Get("/user", controllers.ReviewListMine(reviewService, logg))
			r.With(middleware.RequirePermission(authz.PermModerateReviews, logg)).Get("/all", controllers.ReviewListAll(reviewService, logg))
			r.With(middleware.RequirePermission(authz.PermModerateReviews, logg)).Patch("/{reviewId}/status", controllers.ReviewModerate(reviewService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/v1", func(r chi.Router) {
			r.With(middleware.RequirePermission(authz.PermViewAdminStats, logg)).Get("/stats", controllers.AdminStats(adminService, logg))

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequirePermission(authz.PermManageUsers, logg))
				r.Get("/", controllers.AdminUserList(adminService, logg))
				r.Get("/recent", controllers.AdminRecentUsers(adminService, logg))
				r.Put("/{userId}/role", controllers.AdminChangeUserRole(adminService, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Use(middleware.RequirePermission(authz.PermManageProducts, logg))
				r.Get("/", controllers.AdminProductList(productService, logg))
				r.Post("/", controllers.AdminProductCreate(productService, logg))
				r.Patch("/{productId}", controllers.AdminProductUpdate(productService, logg))
				r.Delete("/{productId}", controllers.AdminProductDeactivate(productService, logg))
			})
		})
	})

	return r
}
