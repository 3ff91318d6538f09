package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/providers"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/repositories"
	apperrors "github.com/zatekoja/hospitalcostsearch/pkg/errors"
)

const (
	profileKeyPrefix     = "profile:"
	eligibilityKeyPrefix = "eligibility:"
)

// RedisProfileStore keeps profiles and eligibility records as JSON values in
// a key-value cache, under "profile:<user>" and "eligibility:<user>".
type RedisProfileStore struct {
	cache providers.CacheProvider
	ttl   time.Duration
}

var _ repositories.ProfileRepository = (*RedisProfileStore)(nil)

// NewRedisProfileStore creates a store on cache. A zero ttl keeps records
// until they are replaced.
func NewRedisProfileStore(cache providers.CacheProvider, ttl time.Duration) *RedisProfileStore {
	return &RedisProfileStore{cache: cache, ttl: ttl}
}

func (s *RedisProfileStore) GetProfile(ctx context.Context, userID string) (*entities.UserProfile, error) {
	profile := &entities.UserProfile{}
	if err := s.get(ctx, profileKeyPrefix+userID, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *RedisProfileStore) GetEligibility(ctx context.Context, userID string) (*entities.EligibilityRecord, error) {
	record := &entities.EligibilityRecord{}
	if err := s.get(ctx, eligibilityKeyPrefix+userID, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *RedisProfileStore) SaveProfile(ctx context.Context, profile *entities.UserProfile) error {
	if profile == nil || profile.UserID == "" {
		return apperrors.NewValidationError("profile user id is required")
	}
	stored := *profile
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	return s.set(ctx, profileKeyPrefix+profile.UserID, &stored)
}

func (s *RedisProfileStore) SaveEligibility(ctx context.Context, userID string, record *entities.EligibilityRecord) error {
	if userID == "" || record == nil {
		return apperrors.NewValidationError("eligibility user id and record are required")
	}
	stored := *record
	stored.UserID = userID
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	return s.set(ctx, eligibilityKeyPrefix+userID, &stored)
}

func (s *RedisProfileStore) get(ctx context.Context, key string, dest interface{}) error {
	raw, err := s.cache.Get(ctx, key)
	if errors.Is(err, providers.ErrCacheMiss) {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s not found", key))
	}
	if err != nil {
		return apperrors.NewInternalError("failed to read "+key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return apperrors.NewDecodeError("corrupt value at "+key, err)
	}
	return nil
}

func (s *RedisProfileStore) set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewInternalError("failed to encode "+key, err)
	}
	if err := s.cache.Set(ctx, key, raw, int(s.ttl/time.Second)); err != nil {
		return apperrors.NewInternalError("failed to write "+key, err)
	}
	return nil
}
