package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/repositories"
	apperrors "github.com/zatekoja/hospitalcostsearch/pkg/errors"
)

// MemoryProfileStore keeps profiles and eligibility records in process memory
type MemoryProfileStore struct {
	mu          sync.RWMutex
	profiles    map[string]entities.UserProfile
	eligibility map[string]entities.EligibilityRecord
}

var _ repositories.ProfileRepository = (*MemoryProfileStore)(nil)

// NewMemoryProfileStore creates an empty in-memory store
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{
		profiles:    make(map[string]entities.UserProfile),
		eligibility: make(map[string]entities.EligibilityRecord),
	}
}

func (s *MemoryProfileStore) GetProfile(ctx context.Context, userID string) (*entities.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("profile for user %s not found", userID))
	}
	return &profile, nil
}

func (s *MemoryProfileStore) GetEligibility(ctx context.Context, userID string) (*entities.EligibilityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.eligibility[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("eligibility for user %s not found", userID))
	}
	return cloneEligibility(&record)
}

func (s *MemoryProfileStore) SaveProfile(ctx context.Context, profile *entities.UserProfile) error {
	if profile == nil || profile.UserID == "" {
		return apperrors.NewValidationError("profile user id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *profile
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	s.profiles[profile.UserID] = stored
	return nil
}

func (s *MemoryProfileStore) SaveEligibility(ctx context.Context, userID string, record *entities.EligibilityRecord) error {
	if userID == "" || record == nil {
		return apperrors.NewValidationError("eligibility user id and record are required")
	}

	stored, err := cloneEligibility(record)
	if err != nil {
		return err
	}
	stored.UserID = userID
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.eligibility[userID] = *stored
	return nil
}

// SeedData is the JSON layout of a profile seed file
type SeedData struct {
	Profiles    []entities.UserProfile       `json:"profiles"`
	Eligibility []entities.EligibilityRecord `json:"eligibility"`
}

// Seed saves every profile and eligibility record in data into repo
func Seed(ctx context.Context, repo repositories.ProfileRepository, data *SeedData) error {
	for i := range data.Profiles {
		if err := repo.SaveProfile(ctx, &data.Profiles[i]); err != nil {
			return fmt.Errorf("seed profile %q: %w", data.Profiles[i].UserID, err)
		}
	}
	for i := range data.Eligibility {
		record := &data.Eligibility[i]
		if err := repo.SaveEligibility(ctx, record.UserID, record); err != nil {
			return fmt.Errorf("seed eligibility %q: %w", record.UserID, err)
		}
	}
	return nil
}

// LoadSeedFile reads a SeedData JSON file
func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	data := &SeedData{}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, apperrors.NewDecodeError("invalid seed file "+path, err)
	}
	return data, nil
}

// cloneEligibility deep-copies a record through its JSON form so callers
// never share nested sections with the store.
func cloneEligibility(record *entities.EligibilityRecord) (*entities.EligibilityRecord, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to copy eligibility record", err)
	}
	out := &entities.EligibilityRecord{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, apperrors.NewInternalError("failed to copy eligibility record", err)
	}
	return out, nil
}
