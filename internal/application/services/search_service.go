package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/providers"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/repositories"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/hospitalcostsearch/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// User-facing messages
const (
	MsgLocationUnavailable    = "Unable to determine your location. Please ensure location services are enabled."
	MsgEligibilityUnavailable = "Unable to retrieve your insurance information."
	MsgProfileUnavailable     = "Unable to retrieve your profile information."
	msgSearchErrorPrefix      = "Error searching for hospitals: "
)

// MaxLocationAccuracyMeters is the worst horizontal accuracy accepted for a
// search location.
const MaxLocationAccuracyMeters = 50.0

// SearchParams identifies one user-initiated search
type SearchParams struct {
	UserID   string
	Symptoms string
	// Location overrides the location provider when set
	Location *providers.Coordinates
}

// HospitalCard is a hospital ready for display with its dial and map links
type HospitalCard struct {
	entities.HospitalWithCosts
	DialURL string `json:"dial_url"`
	MapsURL string `json:"maps_url"`
}

// SearchOutcome is everything the presentation layer needs after a search.
// At most one of ErrorMessage, ExpiryMessage and NoResultsMessage is set.
type SearchOutcome struct {
	Symptoms          string                   `json:"symptoms"`
	InsuranceProvider string                   `json:"insurance_provider,omitempty"`
	TradingPartnerID  string                   `json:"trading_partner_id,omitempty"`
	Response          *entities.SearchResponse `json:"-"`
	Hospitals         []HospitalCard           `json:"hospitals"`
	CostAnalysis      *entities.CostAnalysis   `json:"cost_analysis,omitempty"`

	ErrorMessage     string `json:"error_message,omitempty"`
	NoResultsMessage string `json:"no_results_message,omitempty"`

	CoverageExpired    bool   `json:"coverage_expired"`
	ExpiryMessage      string `json:"expiry_message,omitempty"`
	CoverageExpiryDate string `json:"coverage_expiry_date,omitempty"`

	// StoredCoverageWarning is set when the stored plan dates fail the
	// service's date rules. The search still runs.
	StoredCoverageWarning string `json:"stored_coverage_warning,omitempty"`

	LocationPermissionDenied bool `json:"location_permission_denied"`
	UsingMockData            bool `json:"using_mock_data"`
	// Stale marks an outcome superseded by a newer search in the same session
	Stale bool `json:"stale"`
}

// SearchServiceConfig configures the search flow
type SearchServiceConfig struct {
	// MockOnError shows MockResponse after a failed search call
	MockOnError  bool
	MockResponse func() *entities.SearchResponse
	// Now is the clock for stored coverage checks; nil means time.Now
	Now func() time.Time
}

// SearchService runs the hospital search flow: location, stored eligibility
// and profile, request building, remote search and outcome classification.
type SearchService struct {
	location providers.LocationProvider
	profiles repositories.ProfileRepository
	builder  *RequestBuilder
	client   providers.HospitalSearchProvider
	metrics  *observability.Metrics
	cfg      SearchServiceConfig
}

// NewSearchService creates a new search service
func NewSearchService(
	location providers.LocationProvider,
	profiles repositories.ProfileRepository,
	builder *RequestBuilder,
	client providers.HospitalSearchProvider,
	metrics *observability.Metrics,
	cfg SearchServiceConfig,
) *SearchService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MockResponse == nil {
		cfg.MockOnError = false
	}
	return &SearchService{
		location: location,
		profiles: profiles,
		builder:  builder,
		client:   client,
		metrics:  metrics,
		cfg:      cfg,
	}
}

// Search runs one search. Failures the user should see are reported in the
// outcome. The returned error is non-nil only for empty symptoms or a
// cancelled context.
func (s *SearchService) Search(ctx context.Context, params SearchParams) (*SearchOutcome, error) {
	symptoms := strings.TrimSpace(params.Symptoms)
	if symptoms == "" {
		return nil, apperrors.NewValidationError("symptoms are required")
	}

	ctx, span := observability.StartSpan(ctx, "SearchService.Search")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.String("user.id", params.UserID))

	logger := observability.LoggerFromContext(ctx).With().Str("user_id", params.UserID).Logger()
	outcome := &SearchOutcome{Symptoms: symptoms, Hospitals: []HospitalCard{}}

	coords, denied, ok := s.resolveLocation(ctx, params.Location)
	if denied {
		outcome.LocationPermissionDenied = true
		return outcome, nil
	}
	if !ok {
		outcome.ErrorMessage = MsgLocationUnavailable
		return outcome, nil
	}

	eligibility, err := s.loadEligibility(ctx, params.UserID)
	if err != nil {
		logger.Warn().Err(err).Msg("eligibility lookup failed")
		outcome.ErrorMessage = MsgEligibilityUnavailable
		return outcome, nil
	}

	profile, err := s.loadProfile(ctx, params.UserID)
	if err != nil {
		logger.Warn().Err(err).Msg("profile lookup failed")
		outcome.ErrorMessage = MsgProfileUnavailable
		return outcome, nil
	}

	if check := CheckPlanDates(eligibility.PlanDates, s.cfg.Now()); !check.Valid {
		outcome.StoredCoverageWarning = check.Error
	}

	req := s.builder.Build(symptoms, coords.Latitude, coords.Longitude, eligibility, profile)
	outcome.TradingPartnerID = req.TradingPartnerServiceID
	outcome.InsuranceProvider, _ = s.builder.ProviderForTradingPartner(req.TradingPartnerServiceID)
	observability.SetSpanAttributes(span, attribute.String("search.trading_partner_id", req.TradingPartnerServiceID))

	logger.Info().
		Str("trading_partner_id", req.TradingPartnerServiceID).
		Str("insurance_provider", outcome.InsuranceProvider).
		Msg("searching hospitals")

	resp, err := s.client.Search(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		observability.RecordError(span, err)
		s.applySearchError(ctx, outcome, err)
		return outcome, nil
	}

	s.applyResponse(outcome, resp)
	if len(resp.Hospitals) == 0 {
		outcome.NoResultsMessage = fmt.Sprintf("No hospitals found for '%s'. Try a different symptom or condition.", symptoms)
	}
	return outcome, nil
}

// applySearchError classifies a failed search call. Expired coverage gets an
// alert message in place of the generic error. Either way the mock hospitals
// are shown when MockOnError is set.
func (s *SearchService) applySearchError(ctx context.Context, outcome *SearchOutcome, err error) {
	text := apperrors.UserMessage(err)
	if expiry, expired := DetectCoverageExpiry(text); expired {
		outcome.CoverageExpired = true
		outcome.ExpiryMessage = expiry.Message
		outcome.CoverageExpiryDate = expiry.ExpiryDate
	} else {
		outcome.ErrorMessage = msgSearchErrorPrefix + text
	}

	observability.LoggerFromContext(ctx).Warn().
		Err(err).
		Bool("coverage_expired", outcome.CoverageExpired).
		Bool("mock_fallback", s.cfg.MockOnError).
		Msg("hospital search failed")

	if s.cfg.MockOnError {
		s.applyResponse(outcome, s.cfg.MockResponse())
		outcome.UsingMockData = true
	}
}

func (s *SearchService) applyResponse(outcome *SearchOutcome, resp *entities.SearchResponse) {
	outcome.Response = resp
	outcome.CostAnalysis = resp.CostAnalysis
	if resp.InsuranceProvider != "" {
		outcome.InsuranceProvider = resp.InsuranceProvider
	}
	outcome.Hospitals = make([]HospitalCard, 0, len(resp.Hospitals))
	for _, h := range resp.Hospitals {
		outcome.Hospitals = append(outcome.Hospitals, HospitalCard{
			HospitalWithCosts: h,
			DialURL:           DialURL(h.Phone),
			MapsURL:           MapsURL(h.Address),
		})
	}
}

// resolveLocation returns the search coordinates. denied reports that the
// user refused location access; ok is false when no usable fix exists.
func (s *SearchService) resolveLocation(ctx context.Context, override *providers.Coordinates) (coords providers.Coordinates, denied, ok bool) {
	if override != nil {
		return *override, false, true
	}
	if s.location == nil {
		return providers.Coordinates{}, false, false
	}

	reading, err := s.location.CurrentLocation(ctx)
	switch {
	case errors.Is(err, providers.ErrLocationPermissionDenied):
		return providers.Coordinates{}, true, false
	case err != nil:
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("location unavailable")
		return providers.Coordinates{}, false, false
	case reading == nil || reading.AccuracyMeters > MaxLocationAccuracyMeters:
		return providers.Coordinates{}, false, false
	}
	return reading.Coordinates, false, true
}

func (s *SearchService) loadEligibility(ctx context.Context, userID string) (*entities.EligibilityRecord, error) {
	start := time.Now()
	defer func() {
		observability.RecordStoreLookup(ctx, s.metrics, "eligibility", time.Since(start))
	}()
	return s.profiles.GetEligibility(ctx, userID)
}

func (s *SearchService) loadProfile(ctx context.Context, userID string) (*entities.UserProfile, error) {
	start := time.Now()
	defer func() {
		observability.RecordStoreLookup(ctx, s.metrics, "profile", time.Since(start))
	}()
	return s.profiles.GetProfile(ctx, userID)
}

// ValidationOutcome combines the service's verdict on a user's insurance
// with the local plan date check.
type ValidationOutcome struct {
	UserID            string                       `json:"user_id"`
	TradingPartnerID  string                       `json:"trading_partner_id"`
	InsuranceProvider string                       `json:"insurance_provider,omitempty"`
	Remote            *entities.ValidationResponse `json:"remote"`
	StoredCoverage    CoverageCheck                `json:"stored_coverage"`
}

// Validate asks the search service whether the user's stored insurance is
// currently valid. The request carries no symptoms or location.
func (s *SearchService) Validate(ctx context.Context, userID string) (*ValidationOutcome, error) {
	ctx, span := observability.StartSpan(ctx, "SearchService.Validate")
	defer span.End()

	eligibility, profile, err := s.loadStored(ctx, userID)
	if err != nil {
		return nil, err
	}

	req := s.builder.Build("", 0, 0, eligibility, profile)
	out := &ValidationOutcome{
		UserID:           userID,
		TradingPartnerID: req.TradingPartnerServiceID,
		StoredCoverage:   CheckPlanDates(eligibility.PlanDates, s.cfg.Now()),
	}
	out.InsuranceProvider, _ = s.builder.ProviderForTradingPartner(req.TradingPartnerServiceID)

	remote, err := s.client.Validate(ctx, req)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	out.Remote = remote
	return out, nil
}

// CheckStoredCoverage applies the plan date rules to the user's stored
// eligibility record without calling the search service.
func (s *SearchService) CheckStoredCoverage(ctx context.Context, userID string) (CoverageCheck, error) {
	eligibility, err := s.loadEligibility(ctx, userID)
	if err != nil {
		return CoverageCheck{}, err
	}
	return CheckPlanDates(eligibility.PlanDates, s.cfg.Now()), nil
}

// Health reports the search service health
func (s *SearchService) Health(ctx context.Context) (*entities.HealthResponse, error) {
	return s.client.Health(ctx)
}

func (s *SearchService) loadStored(ctx context.Context, userID string) (*entities.EligibilityRecord, *entities.UserProfile, error) {
	eligibility, err := s.loadEligibility(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil, apperrors.NewNotFoundError(MsgEligibilityUnavailable)
		}
		return nil, nil, fmt.Errorf("failed to load eligibility: %w", err)
	}
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil, apperrors.NewNotFoundError(MsgProfileUnavailable)
		}
		return nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return eligibility, profile, nil
}
