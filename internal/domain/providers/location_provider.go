package providers

import (
	"context"
	"errors"
)

// ErrLocationPermissionDenied is returned when the user has not granted
// access to the device location.
var ErrLocationPermissionDenied = errors.New("location permission denied")

// LocationProvider supplies the caller's current position
type LocationProvider interface {
	// CurrentLocation returns a single reading
	CurrentLocation(ctx context.Context) (*LocationReading, error)
}

// Coordinates represents geographical coordinates
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// LocationReading is a position fix with its horizontal accuracy in meters
type LocationReading struct {
	Coordinates    Coordinates
	AccuracyMeters float64
}
