package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/hospitalcostsearch/internal/adapters/providers/location"
	"github.com/zatekoja/hospitalcostsearch/internal/api/handlers"
	"github.com/zatekoja/hospitalcostsearch/internal/api/routes"
	"github.com/zatekoja/hospitalcostsearch/internal/application/services"
	"github.com/zatekoja/hospitalcostsearch/internal/bootstrap"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/observability"
	"github.com/zatekoja/hospitalcostsearch/pkg/config"
	"github.com/zatekoja/hospitalcostsearch/pkg/secrets"
)

func main() {
	if _, err := secrets.ApplyVault(context.Background(), secrets.VaultConfigFromEnv()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load Vault secrets: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.App.ServiceName, cfg.App.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	repo, closeStore, err := bootstrap.NewProfileRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Failed to open profile store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("Error closing profile store")
		}
	}()

	searchService, err := bootstrap.NewSearchService(cfg, repo, location.NewFromConfig(&cfg.Location), metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize search service")
	}
	log.Info().
		Str("base_url", cfg.Search.BaseURL).
		Bool("mock_fallback", cfg.Search.MockOnDecodeFailure).
		Msg("Search client initialized")

	searchHandler := handlers.NewSearchHandler(
		services.NewSessionRegistry(searchService),
		searchService,
		cfg.App.ServiceName,
	)

	router := routes.NewRouter(searchHandler, cfg.Server.AllowedOrigins, metrics)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		// Remote searches may take up to the search timeout
		WriteTimeout: cfg.Search.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
