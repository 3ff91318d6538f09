package repositories

import (
	"context"

	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
)

// ProfileRepository is the key-value store holding each user's profile and
// the eligibility record fetched for them. Missing records yield a
// NOT_FOUND AppError.
type ProfileRepository interface {
	// GetProfile retrieves a user profile by user ID
	GetProfile(ctx context.Context, userID string) (*entities.UserProfile, error)

	// GetEligibility retrieves the stored eligibility record for a user
	GetEligibility(ctx context.Context, userID string) (*entities.EligibilityRecord, error)

	// SaveProfile creates or replaces a user profile
	SaveProfile(ctx context.Context, profile *entities.UserProfile) error

	// SaveEligibility creates or replaces the eligibility record for a user
	SaveEligibility(ctx context.Context, userID string, record *entities.EligibilityRecord) error
}
