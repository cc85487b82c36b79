package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/minhnguyen-io/lenscraft-backend/api/routes"
	internalauth "github.com/minhnguyen-io/lenscraft-backend/internal/auth"
	"github.com/minhnguyen-io/lenscraft-backend/internal/catalog"
	"github.com/minhnguyen-io/lenscraft-backend/internal/orders"
	"github.com/minhnguyen-io/lenscraft-backend/internal/payments"
	"github.com/minhnguyen-io/lenscraft-backend/internal/preorders"
	"github.com/minhnguyen-io/lenscraft-backend/internal/pricing"
	"github.com/minhnguyen-io/lenscraft-backend/internal/users"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/config"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/db"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/migrate"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/redis"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/vnpay"
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

	if cfg.App.IsDev() {
		sqlDB, err := dbClient.SQLDB()
		if err != nil {
			logg.Error(context.Background(), "failed to get sql handle for migrations", err)
			os.Exit(1)
		}
		if err := migrate.Up(context.Background(), sqlDB, migrate.DefaultDir); err != nil {
			logg.Error(context.Background(), "failed to run dev migrations", err)
			os.Exit(1)
		}
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

	catalogRepo := catalog.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	preordersRepo := preorders.NewRepository(dbClient.DB())
	paymentsRepo := payments.NewRepository(dbClient.DB())

	pricingSvc, err := pricing.NewService(catalogRepo)
	requireService(logg, "pricing", err)

	catalogSvc, err := catalog.NewService(catalogRepo)
	requireService(logg, "catalog", err)

	authSvc, err := internalauth.NewService(usersRepo, redisClient, cfg.JWT, cfg.Password, logg)
	requireService(logg, "auth", err)

	ordersSvc, err := orders.NewService(ordersRepo, pricingSvc, dbClient, logg)
	requireService(logg, "orders", err)

	preordersSvc, err := preorders.NewService(preordersRepo, ordersRepo, pricingSvc, dbClient, logg)
	requireService(logg, "preorders", err)

	gateway, err := vnpay.NewClient(cfg.VNPay)
	requireService(logg, "vnpay gateway", err)

	paymentsSvc, err := payments.NewService(
		paymentsRepo,
		ordersRepo,
		preordersRepo,
		ordersSvc,
		preordersSvc,
		gateway,
		cfg.VNPay.ReturnURL,
		redisClient,
		dbClient,
		logg,
	)
	requireService(logg, "payments", err)

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
		Handler: routes.NewRouter(cfg, logg, routes.Services{
			Auth:      authSvc,
			Catalog:   catalogSvc,
			Orders:    ordersSvc,
			Preorders: preordersSvc,
			Payments:  paymentsSvc,
			Sessions:  redisClient,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
