package providers

import (
	"context"

	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
)

// HospitalSearchProvider is the remote hospital search service
type HospitalSearchProvider interface {
	// Search posts an eligibility search and returns hospitals with cost estimates
	Search(ctx context.Context, req entities.SearchRequest) (*entities.SearchResponse, error)

	// Validate asks the service whether the insurance in req is currently valid
	Validate(ctx context.Context, req entities.SearchRequest) (*entities.ValidationResponse, error)

	// Health reports the service health
	Health(ctx context.Context) (*entities.HealthResponse, error)
}
