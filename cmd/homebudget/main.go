package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jfprgin/home-budget/internal/auth"
	"github.com/jfprgin/home-budget/internal/backend"
	"github.com/jfprgin/home-budget/internal/cli"
	apphttp "github.com/jfprgin/home-budget/internal/http"
	"github.com/jfprgin/home-budget/internal/log"
	"github.com/jfprgin/home-budget/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		log.New(log.DefaultConfig()).Error("Failed to load .env file", log.FieldError, err)
		os.Exit(1)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, os.Stdout)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer closeBackend(logger, res.Cleanup)

	loc := cfg.Location()
	registry := services.NewRegistry(res.Store, res.Events, services.Options{
		Issuer:   auth.NewIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL),
		Hasher:   auth.NewHasher(cfg.BcryptCost),
		Seed:     cfg.PredefinedCategories,
		Location: loc,
		Users:    res.Users,
	})

	srv := apphttp.NewServer(apphttp.Config{
		Addr:          ":" + cfg.Port,
		PageSize:      cfg.PageSize,
		MaxPageSize:   cfg.MaxPageSize,
		AuthRateLimit: cfg.AuthRateLimit,
		Location:      loc,
	}, registry, res.Store, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting home budget server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"time_zone", loc.String(),
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		// os.Exit skips the deferred close
		closeBackend(logger, res.Cleanup)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// closeBackend runs cleanup and logs its failure. Both shutdown paths use it.
func closeBackend(logger *log.Logger, cleanup backend.CleanupFunc) {
	if cleanup == nil {
		return
	}
	if err := cleanup(); err != nil {
		logger.Error("Backend cleanup failed", log.FieldError, err)
	}
}
