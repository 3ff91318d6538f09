package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/hospitalcostsearch/internal/adapters/providers/location"
	"github.com/zatekoja/hospitalcostsearch/pkg/config"
	apperrors "github.com/zatekoja/hospitalcostsearch/pkg/errors"
)

const seed = `{
	"profiles": [{"userId": "u1", "firstName": "Ada", "lastName": "Lovelace", "insuranceProvider": "Cigna"}],
	"eligibility": [{"userId": "u1", "planDates": {"planBegin": "20260101", "planEnd": "20261231"}}]
}`

func TestNewProfileRepository_MemoryWithSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	cfg := &config.Config{Store: config.StoreConfig{Backend: BackendMemory, SeedFile: path}}
	repo, closeFn, err := NewProfileRepository(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()

	profile, err := repo.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.FirstName)

	_, err = repo.GetEligibility(context.Background(), "u1")
	require.NoError(t, err)
}

func TestNewProfileRepository_DefaultsToMemory(t *testing.T) {
	repo, closeFn, err := NewProfileRepository(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.NoError(t, closeFn())

	_, err = repo.GetProfile(context.Background(), "nobody")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestNewProfileRepository_UnknownBackend(t *testing.T) {
	_, _, err := NewProfileRepository(context.Background(), &config.Config{
		Store: config.StoreConfig{Backend: "etcd"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestNewProfileRepository_BadSeedFile(t *testing.T) {
	_, _, err := NewProfileRepository(context.Background(), &config.Config{
		Store: config.StoreConfig{SeedFile: filepath.Join(t.TempDir(), "missing.json")},
	})
	assert.Error(t, err)
}

func TestNewSearchService_InvalidBaseURL(t *testing.T) {
	cfg := &config.Config{Search: config.SearchConfig{BaseURL: "not a url"}}
	_, err := NewSearchService(cfg, nil, location.NewFixedLocationProvider(0, 0, 1), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
