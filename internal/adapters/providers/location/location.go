package location

import (
	"context"

	"github.com/zatekoja/hospitalcostsearch/internal/domain/providers"
	"github.com/zatekoja/hospitalcostsearch/pkg/config"
)

// FixedLocationProvider always reports the configured position
type FixedLocationProvider struct {
	reading providers.LocationReading
}

var _ providers.LocationProvider = (*FixedLocationProvider)(nil)

// NewFixedLocationProvider creates a provider reporting lat/lng with the
// given horizontal accuracy in meters.
func NewFixedLocationProvider(lat, lng, accuracyMeters float64) *FixedLocationProvider {
	return &FixedLocationProvider{reading: providers.LocationReading{
		Coordinates:    providers.Coordinates{Latitude: lat, Longitude: lng},
		AccuracyMeters: accuracyMeters,
	}}
}

// NewFromConfig creates a FixedLocationProvider from LocationConfig
func NewFromConfig(cfg *config.LocationConfig) *FixedLocationProvider {
	return NewFixedLocationProvider(cfg.Latitude, cfg.Longitude, cfg.AccuracyMeters)
}

func (p *FixedLocationProvider) CurrentLocation(ctx context.Context) (*providers.LocationReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reading := p.reading
	return &reading, nil
}

// DeniedLocationProvider behaves as if the user refused location access
type DeniedLocationProvider struct{}

func (DeniedLocationProvider) CurrentLocation(ctx context.Context) (*providers.LocationReading, error) {
	return nil, providers.ErrLocationPermissionDenied
}
