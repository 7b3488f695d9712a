package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/devine-water/devine-water/internal/app"
	"github.com/devine-water/devine-water/internal/audit"
	"github.com/devine-water/devine-water/internal/auth"
	"github.com/devine-water/devine-water/internal/dashboard"
	"github.com/devine-water/devine-water/internal/deliveries"
	"github.com/devine-water/devine-water/internal/finance"
	"github.com/devine-water/devine-water/internal/orders"
	"github.com/devine-water/devine-water/internal/routeplan"
	"github.com/devine-water/devine-water/internal/shopsales"
	"github.com/devine-water/devine-water/internal/users"
	"github.com/devine-water/devine-water/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	auditRepo := audit.NewRepository(dbpool)
	auditor := audit.NewRecorder(queueClient, auditRepo, logger)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService)

	tokens := auth.NewTokens(cfg.TokenSecret, cfg.TokenTTL)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authMiddleware := auth.NewMiddleware(tokens)
	authHandler := auth.NewHandler(logger, authService, tokens, auditor)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, auditor)
	usersHandler := users.NewHandler(logger, usersService)

	ordersRepo := orders.NewRepository(dbpool)
	ordersService := orders.NewService(ordersRepo, usersRepo, auditor)
	ordersHandler := orders.NewHandler(logger, ordersService)

	deliveriesRepo := deliveries.NewRepository(dbpool)
	deliveriesService := deliveries.NewService(deliveriesRepo, auditor)
	deliveriesHandler := deliveries.NewHandler(logger, deliveriesService)

	routesRepo := routeplan.NewRepository(dbpool)
	routesService := routeplan.NewService(routesRepo, auditor)
	routesHandler := routeplan.NewHandler(logger, routesService)

	financeRepo := finance.NewRepository(dbpool)
	financeService := finance.NewService(financeRepo, redisClient, auditor, logger)
	financeHandler := finance.NewHandler(logger, financeService)

	salesRepo := shopsales.NewRepository(dbpool, financeRepo)
	salesService := shopsales.NewService(salesRepo, cfg.ShopUnitPrice, auditor)
	salesHandler := shopsales.NewHandler(logger, salesService)

	dashboardRepo := dashboard.NewRepository(dbpool)
	dashboardService := dashboard.NewService(dashboardRepo, financeRepo, ordersRepo, routesRepo, redisClient, logger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthMiddleware:    authMiddleware,
		AuthHandler:       authHandler,
		UsersHandler:      usersHandler,
		OrdersHandler:     ordersHandler,
		DeliveriesHandler: deliveriesHandler,
		RoutesHandler:     routesHandler,
		FinanceHandler:    financeHandler,
		ShopSalesHandler:  salesHandler,
		AuditHandler:      auditHandler,
		DashboardHandler:  dashboardHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
