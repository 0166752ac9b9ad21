package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datadrop/datadrop/internal/admin"
	"github.com/datadrop/datadrop/internal/app"
	"github.com/datadrop/datadrop/internal/auth"
	"github.com/datadrop/datadrop/internal/bootstrap"
	"github.com/datadrop/datadrop/internal/observability"
	"github.com/datadrop/datadrop/internal/platform/cache"
	"github.com/datadrop/datadrop/internal/platform/db"
	"github.com/datadrop/datadrop/internal/shared"
	"github.com/datadrop/datadrop/internal/storage"
	"github.com/datadrop/datadrop/internal/uploads"
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

	if err := db.Migrate(ctx, cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	if cfg.SeedDemoData {
		if err := bootstrap.Seed(ctx, logger, dbpool, cfg); err != nil {
			logger.Error("seed demo data", slog.Any("error", err))
			os.Exit(1)
		}
	}

	tokens, err := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}

	activityLogger := shared.NewActivityLogger(dbpool)
	throttle := auth.NewThrottle(redisClient, cfg.LoginFailureLimit, cfg.LoginFailureWindow)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, tokens, activityLogger, throttle)
	authHandler := auth.NewHandler(logger, authService)
	guard := auth.NewGuard(logger, tokens, authRepo)

	blobStore, err := uploads.NewDiskStore(cfg.UploadDir)
	if err != nil {
		logger.Error("init upload dir", slog.Any("error", err))
		os.Exit(1)
	}
	uploadRepo := uploads.NewRepository(dbpool)
	uploadService := uploads.NewService(uploadRepo, blobStore, activityLogger, cfg.UploadMaxBytes)
	uploadHandler := uploads.NewHandler(logger, uploadService)

	storageRepo := storage.NewRepository(dbpool)
	storageHandler := storage.NewHandler(logger, storageRepo, authRepo)

	adminRepo := admin.NewRepository(dbpool)
	adminService := admin.NewService(adminRepo, storageRepo, activityLogger)
	adminHandler := admin.NewHandler(logger, adminService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Guard:          guard,
		AuthHandler:    authHandler,
		UploadHandler:  uploadHandler,
		StorageHandler: storageHandler,
		AdminHandler:   adminHandler,
		Pool:           dbpool,
		Redis:          redisClient,
		Metrics:        metrics,
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
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
