package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-midea/socialgraph/internal/auth"
	"github.com/anonto42/nano-midea/socialgraph/internal/cache"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"github.com/anonto42/nano-midea/socialgraph/internal/router"
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/anonto42/nano-midea/socialgraph/pkg/config"
	"github.com/anonto42/nano-midea/socialgraph/pkg/firebase"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root := &cobra.Command{
		Use:          "socialgraph",
		Short:        "Social graph API server",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate()
		},
	})
	return root
}

func setup() (*config.Config, *zap.Logger, *config.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, db, nil
}

func runMigrate() error {
	_, logger, db, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	defer db.CloseDB()

	if err := config.Migrate(db.Gorm); err != nil {
		return err
	}
	logger.Info("migrations completed")
	return nil
}

func runServe(ctx context.Context) error {
	cfg, logger, db, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	defer db.CloseDB()

	if err := config.Migrate(db.Gorm); err != nil {
		return err
	}

	authors := cache.NewNoopAuthorSetCache()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, feed cache will miss until it recovers", zap.Error(err))
		}
		authors = cache.NewRedisAuthorSetCache(client, cfg.FeedCacheTTL)
		logger.Info("feed author cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	deps := router.Dependencies{
		DB:       db.Gorm,
		Services: services.New(repositories.NewStore(db.Gorm), auth.NewBcryptHasher(0), authors, logger),
		Tokens:   auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Logger:   logger,
	}
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return err
		}
		deps.Firebase = app.AuthClient
		logger.Info("firebase ID tokens accepted")
	}

	e := router.New(deps)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
