package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
	apperrors "github.com/zatekoja/hospitalcostsearch/pkg/errors"
)

func TestMemoryProfileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryProfileStore()

	require.NoError(t, s.SaveProfile(ctx, &entities.UserProfile{UserID: "u1", InsuranceProvider: "Aetna"}))
	require.NoError(t, s.SaveEligibility(ctx, "u1", &entities.EligibilityRecord{
		PayerInfo: &entities.PayerInfo{Name: "AETNA", Contacts: []entities.PayerContact{}},
		PlanDates: &entities.PlanDates{PlanBegin: "20250101"},
	}))

	profile, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Aetna", profile.InsuranceProvider)
	assert.False(t, profile.UpdatedAt.IsZero())

	record, err := s.GetEligibility(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", record.UserID)
	assert.Equal(t, "20250101", record.PlanDates.PlanBegin)
	require.NotNil(t, record.PayerInfo.Contacts)
	assert.Empty(t, record.PayerInfo.Contacts)
}

func TestMemoryProfileStore_NotFound(t *testing.T) {
	s := NewMemoryProfileStore()

	_, err := s.GetProfile(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.GetEligibility(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryProfileStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryProfileStore()
	require.NoError(t, s.SaveEligibility(ctx, "u1", &entities.EligibilityRecord{
		PlanInfo: &entities.PlanInfo{GroupNumber: "6500216"},
	}))

	first, err := s.GetEligibility(ctx, "u1")
	require.NoError(t, err)
	first.PlanInfo.GroupNumber = "changed"

	second, err := s.GetEligibility(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "6500216", second.PlanInfo.GroupNumber)
}

func TestMemoryProfileStore_RejectsMissingUserID(t *testing.T) {
	s := NewMemoryProfileStore()

	err := s.SaveProfile(context.Background(), &entities.UserProfile{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	err = s.SaveEligibility(context.Background(), "", &entities.EligibilityRecord{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"profiles": [{"userId": "u1", "insuranceProvider": "Cigna"}],
		"eligibility": [{"userId": "u1", "planDates": {"planBegin": "20240101", "planEnd": "20241231"}}]
	}`), 0o600))

	data, err := LoadSeedFile(path)
	require.NoError(t, err)

	s := NewMemoryProfileStore()
	require.NoError(t, Seed(context.Background(), s, data))

	profile, err := s.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Cigna", profile.InsuranceProvider)

	record, err := s.GetEligibility(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "20241231", record.PlanDates.PlanEnd)
}

func TestLoadSeedFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"profiles": 3}`), 0o600))

	_, err := LoadSeedFile(path)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDecode))

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
