// Package bootstrap wires configuration into the store, search client and
// search service shared by the HTTP server and the CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/hospitalcostsearch/internal/adapters/cache"
	"github.com/zatekoja/hospitalcostsearch/internal/adapters/store"
	"github.com/zatekoja/hospitalcostsearch/internal/application/services"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/providers"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/repositories"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/clients/redis"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/clients/searchapi"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/observability"
	"github.com/zatekoja/hospitalcostsearch/pkg/config"
	apperrors "github.com/zatekoja/hospitalcostsearch/pkg/errors"
)

// Store backends accepted by STORE_BACKEND
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// CloseFunc releases the connections held by a store
type CloseFunc func() error

func noopClose() error { return nil }

// NewProfileRepository opens the configured store backend and loads
// cfg.SeedFile into it when set.
func NewProfileRepository(ctx context.Context, cfg *config.Config) (repositories.ProfileRepository, CloseFunc, error) {
	var (
		repo    repositories.ProfileRepository
		closeFn CloseFunc = noopClose
	)

	switch cfg.Store.Backend {
	case "", BackendMemory:
		repo = store.NewMemoryProfileStore()

	case BackendRedis:
		client, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		adapter := cache.NewRedisAdapter(client, cfg.Store.KeyPrefix)
		repo = store.NewRedisProfileStore(adapter, cfg.Store.TTL)
		closeFn = client.Close

	case BackendPostgres:
		client, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		pgStore := store.NewPostgresProfileStore(client)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		repo = pgStore
		closeFn = client.Close

		if cfg.Store.CacheEnabled {
			cacheClient, err := redis.NewClient(ctx, &cfg.Redis)
			if err != nil {
				log.Warn().Err(err).Msg("Profile cache unavailable, reading postgres directly")
				break
			}
			adapter := cache.NewRedisAdapter(cacheClient, cfg.Store.KeyPrefix)
			repo = store.NewCachedProfileStore(pgStore, adapter, cfg.Store.CacheTTL)
			closeFn = func() error {
				return errors.Join(cacheClient.Close(), client.Close())
			}
		}

	default:
		return nil, nil, apperrors.NewValidationError(fmt.Sprintf("unknown store backend %q", cfg.Store.Backend))
	}

	if cfg.Store.SeedFile != "" {
		if err := SeedFromFile(ctx, repo, cfg.Store.SeedFile); err != nil {
			_ = closeFn()
			return nil, nil, err
		}
	}

	log.Info().Str("backend", backendName(cfg.Store.Backend)).Msg("Profile store ready")
	return repo, closeFn, nil
}

// SeedFromFile loads a seed file into repo
func SeedFromFile(ctx context.Context, repo repositories.ProfileRepository, path string) error {
	data, err := store.LoadSeedFile(path)
	if err != nil {
		return err
	}
	if err := store.Seed(ctx, repo, data); err != nil {
		return err
	}
	log.Info().
		Str("file", path).
		Int("profiles", len(data.Profiles)).
		Int("eligibility", len(data.Eligibility)).
		Msg("Seeded profile store")
	return nil
}

// NewSearchService builds the remote search client and the service around it
func NewSearchService(
	cfg *config.Config,
	repo repositories.ProfileRepository,
	location providers.LocationProvider,
	metrics *observability.Metrics,
) (*services.SearchService, error) {
	client, err := searchapi.NewClient(&cfg.Search, metrics)
	if err != nil {
		return nil, err
	}

	return services.NewSearchService(
		location,
		repo,
		services.NewRequestBuilder(services.DefaultBuilderConfig()),
		client,
		metrics,
		services.SearchServiceConfig{
			MockOnError:  cfg.Search.MockOnDecodeFailure,
			MockResponse: searchapi.MockResponse,
		},
	), nil
}

func backendName(backend string) string {
	if backend == "" {
		return BackendMemory
	}
	return backend
}
