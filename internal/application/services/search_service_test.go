package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/providers"
	apperrors "github.com/zatekoja/hospitalcostsearch/pkg/errors"
)

// Mocks

type mockSearchClient struct {
	mock.Mock
}

func (m *mockSearchClient) Search(ctx context.Context, req entities.SearchRequest) (*entities.SearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SearchResponse), args.Error(1)
}

func (m *mockSearchClient) Validate(ctx context.Context, req entities.SearchRequest) (*entities.ValidationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ValidationResponse), args.Error(1)
}

func (m *mockSearchClient) Health(ctx context.Context) (*entities.HealthResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HealthResponse), args.Error(1)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) GetProfile(ctx context.Context, userID string) (*entities.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserProfile), args.Error(1)
}

func (m *mockProfileRepo) GetEligibility(ctx context.Context, userID string) (*entities.EligibilityRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EligibilityRecord), args.Error(1)
}

func (m *mockProfileRepo) SaveProfile(ctx context.Context, profile *entities.UserProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *mockProfileRepo) SaveEligibility(ctx context.Context, userID string, record *entities.EligibilityRecord) error {
	return m.Called(ctx, userID, record).Error(0)
}

type stubLocation struct {
	reading *providers.LocationReading
	err     error
}

func (s stubLocation) CurrentLocation(ctx context.Context) (*providers.LocationReading, error) {
	return s.reading, s.err
}

// Helpers

var testNow = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

func nycLocation() stubLocation {
	return stubLocation{reading: &providers.LocationReading{
		Coordinates:    providers.Coordinates{Latitude: 40.71427, Longitude: -74.00597},
		AccuracyMeters: 12,
	}}
}

func testMockResponse() *entities.SearchResponse {
	return &entities.SearchResponse{
		Status:            "success",
		InsuranceProvider: "Cigna",
		Hospitals: []entities.HospitalWithCosts{
			{Name: "Mock General", Address: "1 Main St", Phone: "(212) 555-0100"},
		},
		CostAnalysis: &entities.CostAnalysis{Symptoms: "chest pain"},
		TotalFound:   1,
	}
}

func newTestSearchService(loc providers.LocationProvider, repo *mockProfileRepo, client *mockSearchClient, mockOnError bool) *SearchService {
	builderCfg := DefaultBuilderConfig()
	builderCfg.Now = func() time.Time { return testNow }
	return NewSearchService(loc, repo, NewRequestBuilder(builderCfg), client, nil, SearchServiceConfig{
		MockOnError:  mockOnError,
		MockResponse: testMockResponse,
		Now:          func() time.Time { return testNow },
	})
}

func storedUser(repo *mockProfileRepo, userID, insurer string, dates *entities.PlanDates) {
	repo.On("GetEligibility", mock.Anything, userID).Return(&entities.EligibilityRecord{UserID: userID, PlanDates: dates}, nil)
	repo.On("GetProfile", mock.Anything, userID).Return(&entities.UserProfile{UserID: userID, InsuranceProvider: insurer}, nil)
}

// Tests

func TestSearchService_Search_Success(t *testing.T) {
	repo := new(mockProfileRepo)
	client := new(mockSearchClient)
	storedUser(repo, "u1", "Aetna", nil)

	client.On("Search", mock.Anything, mock.MatchedBy(func(req entities.SearchRequest) bool {
		return req.TradingPartnerServiceID == "60054" &&
			req.Symptoms == "broken arm" &&
			req.Lat == 40.71427 &&
			req.PlanDateInformation.PlanEnd == "20271231"
	})).Return(&entities.SearchResponse{
		Status:            "success",
		InsuranceProvider: "Aetna",
		Hospitals: []entities.HospitalWithCosts{
			{Name: "Mount Sinai Hospital", Address: "1468 Madison Ave, New York, NY 10029", Phone: "(212) 241-6500"},
		},
		TotalFound: 1,
	}, nil)

	svc := newTestSearchService(nycLocation(), repo, client, true)
	outcome, err := svc.Search(context.Background(), SearchParams{UserID: "u1", Symptoms: "  broken arm "})
	require.NoError(t, err)

	assert.Equal(t, "broken arm", outcome.Symptoms)
	assert.Equal(t, "60054", outcome.TradingPartnerID)
	assert.Equal(t, "Aetna", outcome.InsuranceProvider)
	require.Len(t, outcome.Hospitals, 1)
	assert.Equal(t, "tel:2122416500", outcome.Hospitals[0].DialURL)
	assert.Equal(t, "maps://?daddr=1468%20Madison%20Ave,%20New%20York,%20NY%2010029", outcome.Hospitals[0].MapsURL)
	assert.Nil(t, outcome.CostAnalysis)
	assert.Empty(t, outcome.ErrorMessage)
	assert.Empty(t, outcome.NoResultsMessage)
	assert.False(t, outcome.UsingMockData)
	assert.False(t, outcome.CoverageExpired)
	client.AssertExpectations(t)
}

func TestSearchService_Search_NoResults(t *testing.T) {
	repo := new(mockProfileRepo)
	client := new(mockSearchClient)
	storedUser(repo, "u1", "Cigna", nil)
	client.On("Search", mock.Anything, mock.Anything).Return(&entities.SearchResponse{Hospitals: []entities.HospitalWithCosts{}}, nil)

	svc := newTestSearchService(nycLocation(), repo, client, true)
	outcome, err := svc.Search(context.Background(), SearchParams{UserID: "u1", Symptoms: "hiccups"})
	require.NoError(t, err)

	assert.Empty(t, outcome.Hospitals)
	assert.Equal(t, "No hospitals found for 'hiccups'. Try a different symptom or condition.", outcome.NoResultsMessage)
	assert.Empty(t, outcome.ErrorMessage)
}

func TestSearchService_Search_Errors(t *testing.T) {
	tests := []struct {
		name          string
		clientErr     error
		mockOnError   bool
		wantError     string
		wantExpired   bool
		wantExpiry    string
		wantHospitals int
		wantUsingMock bool
	}{
		{
			name:          "coverage expired with date",
			clientErr:     errors.New(`{"detail":"Insurance validation failed: Coverage expired (ended 20231231)"}`),
			mockOnError:   true,
			wantExpired:   true,
			wantExpiry:    "Your insurance plan expired on 12/31/2023.",
			wantHospitals: 1,
			wantUsingMock: true,
		},
		{
			name:          "generic error falls back to mock hospitals",
			clientErr:     errors.New("Internal Server Error"),
			mockOnError:   true,
			wantError:     "Error searching for hospitals: Internal Server Error",
			wantHospitals: 1,
			wantUsingMock: true,
		},
		{
			name:      "generic error without mock fallback",
			clientErr: errors.New("Internal Server Error"),
			wantError: "Error searching for hospitals: Internal Server Error",
		},
		{
			name:      "transport error shown without type tag",
			clientErr: apperrors.NewExternalError("search service request failed", errors.New("dial tcp 127.0.0.1:8000: connection refused")),
			wantError: "Error searching for hospitals: search service request failed: dial tcp 127.0.0.1:8000: connection refused",
		},
		{
			name:        "coverage expired without mock fallback",
			clientErr:   errors.New("Coverage expired"),
			wantExpired: true,
			wantExpiry:  "Your insurance plan has expired.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockProfileRepo)
			client := new(mockSearchClient)
			storedUser(repo, "u1", "Cigna", nil)
			client.On("Search", mock.Anything, mock.Anything).Return(nil, tt.clientErr)

			svc := newTestSearchService(nycLocation(), repo, client, tt.mockOnError)
			outcome, err := svc.Search(context.Background(), SearchParams{UserID: "u1", Symptoms: "chest pain"})
			require.NoError(t, err)

			assert.Equal(t, tt.wantError, outcome.ErrorMessage)
			assert.Equal(t, tt.wantExpired, outcome.CoverageExpired)
			assert.Equal(t, tt.wantExpiry, outcome.ExpiryMessage)
			assert.Len(t, outcome.Hospitals, tt.wantHospitals)
			assert.Equal(t, tt.wantUsingMock, outcome.UsingMockData)
			if tt.wantUsingMock {
				assert.NotNil(t, outcome.CostAnalysis)
			}
		})
	}
}

func TestSearchService_Search_MissingInputs(t *testing.T) {
	notFound := apperrors.NewNotFoundError("missing")

	tests := []struct {
		name       string
		location   providers.LocationProvider
		setup      func(repo *mockProfileRepo)
		wantError  string
		wantDenied bool
	}{
		{
			name:       "location permission denied",
			location:   stubLocation{err: providers.ErrLocationPermissionDenied},
			setup:      func(repo *mockProfileRepo) {},
			wantDenied: true,
		},
		{
			name:      "location unavailable",
			location:  stubLocation{err: errors.New("no fix")},
			setup:     func(repo *mockProfileRepo) {},
			wantError: MsgLocationUnavailable,
		},
		{
			name: "location too inaccurate",
			location: stubLocation{reading: &providers.LocationReading{
				Coordinates:    providers.Coordinates{Latitude: 1, Longitude: 2},
				AccuracyMeters: 120,
			}},
			setup:     func(repo *mockProfileRepo) {},
			wantError: MsgLocationUnavailable,
		},
		{
			name:     "no eligibility record",
			location: nycLocation(),
			setup: func(repo *mockProfileRepo) {
				repo.On("GetEligibility", mock.Anything, "u1").Return(nil, notFound)
			},
			wantError: MsgEligibilityUnavailable,
		},
		{
			name:     "no profile",
			location: nycLocation(),
			setup: func(repo *mockProfileRepo) {
				repo.On("GetEligibility", mock.Anything, "u1").Return(&entities.EligibilityRecord{UserID: "u1"}, nil)
				repo.On("GetProfile", mock.Anything, "u1").Return(nil, notFound)
			},
			wantError: MsgProfileUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockProfileRepo)
			client := new(mockSearchClient)
			tt.setup(repo)

			svc := newTestSearchService(tt.location, repo, client, true)
			outcome, err := svc.Search(context.Background(), SearchParams{UserID: "u1", Symptoms: "fever"})
			require.NoError(t, err)

			assert.Equal(t, tt.wantError, outcome.ErrorMessage)
			assert.Equal(t, tt.wantDenied, outcome.LocationPermissionDenied)
			assert.Empty(t, outcome.Hospitals)
			assert.False(t, outcome.UsingMockData)
			client.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
		})
	}
}

func TestSearchService_Search_LocationOverride(t *testing.T) {
	repo := new(mockProfileRepo)
	client := new(mockSearchClient)
	storedUser(repo, "u1", "Cigna", nil)
	client.On("Search", mock.Anything, mock.MatchedBy(func(req entities.SearchRequest) bool {
		return req.Lat == 29.76 && req.Lng == -95.37
	})).Return(&entities.SearchResponse{Hospitals: []entities.HospitalWithCosts{{Name: "Houston Methodist"}}}, nil)

	svc := newTestSearchService(stubLocation{err: providers.ErrLocationPermissionDenied}, repo, client, false)
	outcome, err := svc.Search(context.Background(), SearchParams{
		UserID:   "u1",
		Symptoms: "cough",
		Location: &providers.Coordinates{Latitude: 29.76, Longitude: -95.37},
	})
	require.NoError(t, err)
	assert.False(t, outcome.LocationPermissionDenied)
	assert.Len(t, outcome.Hospitals, 1)
	client.AssertExpectations(t)
}

func TestSearchService_Search_StoredCoverageWarning(t *testing.T) {
	repo := new(mockProfileRepo)
	client := new(mockSearchClient)
	storedUser(repo, "u1", "Cigna", &entities.PlanDates{PlanBegin: "20240101", PlanEnd: "20251231"})

	// The stored plan end is ignored by the request, which always carries next year's end date.
	client.On("Search", mock.Anything, mock.MatchedBy(func(req entities.SearchRequest) bool {
		return req.PlanDateInformation.PlanEnd == "20271231"
	})).Return(&entities.SearchResponse{Hospitals: []entities.HospitalWithCosts{{Name: "Bellevue"}}}, nil)

	svc := newTestSearchService(nycLocation(), repo, client, false)
	outcome, err := svc.Search(context.Background(), SearchParams{UserID: "u1", Symptoms: "chest pain"})
	require.NoError(t, err)

	assert.Equal(t, "Coverage expired (ended 20251231)", outcome.StoredCoverageWarning)
	assert.Len(t, outcome.Hospitals, 1)
	client.AssertExpectations(t)
}

func TestSearchService_Search_EmptySymptoms(t *testing.T) {
	svc := newTestSearchService(nycLocation(), new(mockProfileRepo), new(mockSearchClient), true)

	_, err := svc.Search(context.Background(), SearchParams{UserID: "u1", Symptoms: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestSearchService_Search_CancelledContext(t *testing.T) {
	repo := new(mockProfileRepo)
	client := new(mockSearchClient)
	storedUser(repo, "u1", "Cigna", nil)
	client.On("Search", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestSearchService(nycLocation(), repo, client, true)
	outcome, err := svc.Search(ctx, SearchParams{UserID: "u1", Symptoms: "chest pain"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, outcome)
}

func TestSearchService_Validate(t *testing.T) {
	repo := new(mockProfileRepo)
	client := new(mockSearchClient)
	storedUser(repo, "u1", "UnitedHealthcare", &entities.PlanDates{PlanBegin: "20270101"})
	client.On("Validate", mock.Anything, mock.MatchedBy(func(req entities.SearchRequest) bool {
		return req.TradingPartnerServiceID == "87726" && req.Symptoms == ""
	})).Return(&entities.ValidationResponse{Valid: true, InsuranceProvider: "UnitedHealthcare"}, nil)

	svc := newTestSearchService(nycLocation(), repo, client, false)
	out, err := svc.Validate(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "87726", out.TradingPartnerID)
	assert.Equal(t, "UnitedHealthcare", out.InsuranceProvider)
	assert.True(t, out.Remote.Valid)
	assert.Equal(t, CoverageCheck{Error: "Coverage not yet effective (begins 20270101)"}, out.StoredCoverage)
}

func TestSearchService_Validate_MissingProfile(t *testing.T) {
	repo := new(mockProfileRepo)
	repo.On("GetEligibility", mock.Anything, "u1").Return(&entities.EligibilityRecord{UserID: "u1"}, nil)
	repo.On("GetProfile", mock.Anything, "u1").Return(nil, apperrors.NewNotFoundError("missing"))
	client := new(mockSearchClient)

	svc := newTestSearchService(nycLocation(), repo, client, false)
	_, err := svc.Validate(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), MsgProfileUnavailable)
	client.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
}

func TestSearchService_CheckStoredCoverage(t *testing.T) {
	repo := new(mockProfileRepo)
	storedUser(repo, "u1", "Cigna", &entities.PlanDates{PlanBegin: "20260101", PlanEnd: "20261231"})

	svc := newTestSearchService(nycLocation(), repo, new(mockSearchClient), false)
	check, err := svc.CheckStoredCoverage(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, check.Valid)
}
