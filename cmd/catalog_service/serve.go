package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	accountService "github.com/payetonkawa/catalog-service/internal/account/service"
	"github.com/payetonkawa/catalog-service/internal/app"
	"github.com/payetonkawa/catalog-service/internal/notify"
	"github.com/payetonkawa/catalog-service/internal/platform/config"
	"github.com/payetonkawa/catalog-service/internal/platform/database"
	"github.com/payetonkawa/catalog-service/internal/platform/logger"
	"github.com/payetonkawa/catalog-service/internal/platform/metrics"
)

const (
	shutdownTimeout = 10 * time.Second
	drainTimeout    = 30 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), *configFile)
			if err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}
			if err := logger.Init(cfg.Log); err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger.Info("Starting Catalog Service...", "driver", cfg.DB.Driver)

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(cfg.DB); err != nil {
			return oops.Code("MIGRATION_FAILED").Wrap(err)
		}
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer db.Close()

	m := metrics.New()

	notifier, closeNotifier, err := buildNotifier(cfg, m)
	if err != nil {
		return err
	}
	defer closeNotifier()

	deps := app.Deps{
		DB:         db,
		Notifier:   notifier,
		Metrics:    m,
		RateLimit:  cfg.RateLimit,
		BcryptCost: cfg.Auth.BcryptCost,
	}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The limiter fails open, so an unreachable Redis is not fatal.
			logger.Warn("Redis unreachable, rate limiting will allow all requests", "addr", cfg.Redis.Addr, "error", err)
		}
		deps.Redis = rdb
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           app.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Catalog Service running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down Catalog Service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

// buildNotifier picks mail or log delivery and, when configured, moves it
// onto the worker pool. The returned func drains pending deliveries.
func buildNotifier(cfg config.Config, m *metrics.Registry) (accountService.Notifier, func(), error) {
	var base notify.Notifier = notify.LogNotifier{}
	if cfg.SMTP.Enabled() {
		base = notify.NewMailNotifier(notify.NewSMTPDialer(cfg.SMTP), cfg.SMTP.From, notify.NewPNGEncoder(cfg.Notify.QRSize))
	} else {
		logger.Warn("SMTP host not configured, registration tokens will not be e-mailed")
	}

	if !cfg.Notify.Async {
		return base, func() {}, nil
	}

	async, err := notify.NewAsyncNotifier(base, cfg.Notify.Workers, m)
	if err != nil {
		return nil, nil, oops.Code("NOTIFIER_INIT_FAILED").Wrap(err)
	}
	return async, func() {
		if err := async.Close(drainTimeout); err != nil {
			logger.Error("Notifier did not drain in time", err)
		}
	}, nil
}
