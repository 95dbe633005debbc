package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/merchlane/merchportal-backend/api/routes"
	"github.com/merchlane/merchportal-backend/internal/admin"
	"github.com/merchlane/merchportal-backend/internal/auth"
	"github.com/merchlane/merchportal-backend/internal/cart"
	"github.com/merchlane/merchportal-backend/internal/departments"
	"github.com/merchlane/merchportal-backend/internal/distributions"
	"github.com/merchlane/merchportal-backend/internal/grouporders"
	"github.com/merchlane/merchportal-backend/internal/products"
	"github.com/merchlane/merchportal-backend/internal/reviews"
	"github.com/merchlane/merchportal-backend/internal/users"
	"github.com/merchlane/merchportal-backend/internal/wishlist"
	"github.com/merchlane/merchportal-backend/pkg/auth/session"
	"github.com/merchlane/merchportal-backend/pkg/config"
	"github.com/merchlane/merchportal-backend/pkg/db"
	"github.com/merchlane/merchportal-backend/pkg/logger"
	"github.com/merchlane/merchportal-backend/pkg/migrate"
	"github.com/merchlane/merchportal-backend/pkg/outbox"
	"github.com/merchlane/merchportal-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
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
	departmentsRepo := departments.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
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

	productService, err := products.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(dbClient, cart.NewRepository(dbClient.DB()), productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.NewRepository(dbClient.DB()), productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	distributionRepo := distributions.NewRepository(dbClient.DB())

	orderService, err := grouporders.NewService(grouporders.ServiceParams{
		DB:            dbClient,
		Repo:          grouporders.NewRepository(dbClient.DB()),
		Products:      productRepo,
		Users:         userRepo,
		Distributions: distributionRepo,
		Outbox:        outboxService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create group order service", err)
		os.Exit(1)
	}

	distributionService, err := distributions.NewService(distributions.ServiceParams{
		DB:     dbClient,
		Repo:   distributionRepo,
		Users:  userRepo,
		Orders: orderService,
		Outbox: outboxService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create distribution service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		DB:       dbClient,
		Repo:     reviews.NewRepository(dbClient.DB()),
		Users:    userRepo,
		Products: productRepo,
		Outbox:   outboxService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(admin.ServiceParams{
		DB:     dbClient,
		Stats:  admin.NewStatsRepository(dbClient.DB()),
		Users:  userRepo,
		Outbox: outboxService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			registerService,
			departmentsRepo,
			productService,
			cartService,
			wishlistService,
			orderService,
			distributionService,
			reviewService,
			adminService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
