package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"expensetracker/internal/backend"
	"expensetracker/internal/cache"
	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	applog "expensetracker/internal/log"
	"expensetracker/internal/session"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		applog.New(applog.DefaultConfig()).Error("Failed to load .env", applog.FieldError, err)
		os.Exit(1)
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ctx := context.Background()
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "db_path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	b := res.Backend

	sessions := session.NewStore(cfg.SessionCapacity, cfg.SessionIdleTTL)
	caches := cache.NewManager()
	caches.Register("sessions", sessions.Cleaner())
	if cfg.SessionIdleTTL > 0 {
		caches.StartCleanup(cfg.SessionIdleTTL / 2)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Router:   b.Router,
		Sessions: sessions,
		Ledger:   b.Ledger,
		Profiles: b.Profiles,
		Storage:  b.Repo,
		Logger:   logger,
	}, apphttp.Options{
		CookieName:         cfg.SessionCookieName,
		SecureCookies:      os.Getenv("SECURE_COOKIES") == "true",
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	logger.Info("Starting expense tracker server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"amqp_enabled", b.AMQP != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
