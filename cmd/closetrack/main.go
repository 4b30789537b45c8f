package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/closetrack/closetrack/internal/activity"
	"github.com/closetrack/closetrack/internal/app"
	"github.com/closetrack/closetrack/internal/auth"
	"github.com/closetrack/closetrack/internal/catalog"
	"github.com/closetrack/closetrack/internal/cycle"
	"github.com/closetrack/closetrack/internal/platform/cache"
	"github.com/closetrack/closetrack/internal/platform/db"
	"github.com/closetrack/closetrack/internal/shared"
	"github.com/closetrack/closetrack/internal/task"
	"github.com/closetrack/closetrack/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	logger.Info("sessions configured",
		slog.String("cookie", sessionManager.CookieName()),
		slog.Duration("ttl", sessionManager.TTL()))

	taskCatalog := catalog.Default()
	if cfg.CatalogPath != "" {
		taskCatalog, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			logger.Error("load task catalog", slog.String("path", cfg.CatalogPath), slog.Any("error", err))
			os.Exit(1)
		}
	}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	cycleRepo := cycle.NewRepository(pool)
	cycleService := cycle.NewService(cycleRepo, taskCatalog)
	cycleHandler := cycle.NewHandler(logger, cycleService)

	taskRepo := task.NewRepository(pool)
	taskService := task.NewService(taskRepo)
	taskHandler := task.NewHandler(logger, taskService)

	activityRepo := activity.NewRepository(pool)
	activityService := activity.NewService(activityRepo, redisClient, cfg.FeedCacheTTL)
	activityHandler := activity.NewHandler(logger, activityService)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		AuthHandler:     authHandler,
		UsersHandler:    usersHandler,
		CycleHandler:    cycleHandler,
		TaskHandler:     taskHandler,
		ActivityHandler: activityHandler,
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
