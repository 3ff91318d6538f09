package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/providers"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/repositories"
)

// CachedProfileStore wraps a ProfileRepository with a read-through cache.
// Cache failures are logged and fall through to the wrapped store.
type CachedProfileStore struct {
	store repositories.ProfileRepository
	cache providers.CacheProvider
	ttl   int
}

var _ repositories.ProfileRepository = (*CachedProfileStore)(nil)

// NewCachedProfileStore creates a cached store. Entries expire after ttl;
// zero keeps them until the record is saved again.
func NewCachedProfileStore(store repositories.ProfileRepository, cache providers.CacheProvider, ttl time.Duration) *CachedProfileStore {
	return &CachedProfileStore{store: store, cache: cache, ttl: int(ttl / time.Second)}
}

func profileCacheKey(userID string) string {
	return fmt.Sprintf("cache:profile:%s", userID)
}

func eligibilityCacheKey(userID string) string {
	return fmt.Sprintf("cache:eligibility:%s", userID)
}

func (s *CachedProfileStore) GetProfile(ctx context.Context, userID string) (*entities.UserProfile, error) {
	key := profileCacheKey(userID)

	profile := &entities.UserProfile{}
	if s.fromCache(ctx, key, profile) {
		return profile, nil
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, profile)
	return profile, nil
}

func (s *CachedProfileStore) GetEligibility(ctx context.Context, userID string) (*entities.EligibilityRecord, error) {
	key := eligibilityCacheKey(userID)

	record := &entities.EligibilityRecord{}
	if s.fromCache(ctx, key, record) {
		return record, nil
	}

	record, err := s.store.GetEligibility(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, record)
	return record, nil
}

func (s *CachedProfileStore) SaveProfile(ctx context.Context, profile *entities.UserProfile) error {
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return err
	}
	s.invalidate(ctx, profileCacheKey(profile.UserID))
	return nil
}

func (s *CachedProfileStore) SaveEligibility(ctx context.Context, userID string, record *entities.EligibilityRecord) error {
	if err := s.store.SaveEligibility(ctx, userID, record); err != nil {
		return err
	}
	s.invalidate(ctx, eligibilityCacheKey(userID))
	return nil
}

func (s *CachedProfileStore) fromCache(ctx context.Context, key string, dest interface{}) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt cache entry")
		s.invalidate(ctx, key)
		return false
	}
	return true
}

func (s *CachedProfileStore) toCache(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache value")
	}
}

func (s *CachedProfileStore) invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to invalidate cache entry")
	}
}
