package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/billcraft/billcraft/internal/app"
	"github.com/billcraft/billcraft/internal/auth"
	"github.com/billcraft/billcraft/internal/billing"
	"github.com/billcraft/billcraft/internal/export"
	"github.com/billcraft/billcraft/internal/platform/kv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	backend, closeBackend, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Error("open storage", slog.String("backend", cfg.StorageBackend), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeBackend()

	authService, err := auth.NewService(cfg.AdminUser, cfg.AdminPassword, cfg.AdminName)
	if err != nil {
		logger.Error("init auth", slog.Any("error", err))
		os.Exit(1)
	}
	sessions := auth.NewSessionManager(logger, backend, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	authHandler := auth.NewHandler(logger, authService, sessions)
	authMiddleware := auth.Middleware{Sessions: sessions, Service: authService}

	var gotenberg *export.GotenbergClient
	if cfg.GotenbergURL != "" {
		gotenberg = export.NewGotenbergClient(cfg.GotenbergURL)
		if err := gotenberg.Ping(ctx); err != nil {
			logger.Warn("gotenberg unreachable, keeping html renderer anyway", slog.Any("error", err))
		}
	}
	renderer, err := export.NewService(logger, gotenberg)
	if err != nil {
		logger.Error("init pdf renderer", slog.Any("error", err))
		os.Exit(1)
	}

	store := billing.NewStore(logger, backend)
	service := billing.NewService(logger, store)
	billingHandler := billing.NewHandler(logger, service, renderer)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		BillingHandler: billingHandler,
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

// openStorage builds the configured key value backend. The returned func
// releases any held connections.
func openStorage(ctx context.Context, cfg *app.Config) (kv.Store, func(), error) {
	switch cfg.StorageBackend {
	case "memory":
		return kv.NewMemory(), func() {}, nil
	case "redis":
		store, err := kv.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		store, err := kv.NewPostgres(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		store, err := kv.NewFile(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
