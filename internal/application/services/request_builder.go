package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
)

// BuilderConfig holds the static tables the request builder falls back on.
type BuilderConfig struct {
	// TradingPartners maps an insurance provider name to its trading partner service id
	TradingPartners         map[string]string
	DefaultTradingPartnerID string

	SubscriberEntityIdentifier string
	PayerEntityIdentifier      string
	PayerEntityType            string
	DefaultPayerName           string
	DefaultPayerLastName       string
	DefaultPayerTaxID          string
	DefaultContacts            []entities.Contact

	DefaultGroupNumber      string
	DefaultGroupDescription string

	DefaultPlanBegin        string
	DefaultEligibilityBegin string

	PlanStatuses []entities.PlanStatus
	Benefits     []entities.BenefitInformation

	// Now is the clock used for the plan end date; nil means time.Now
	Now func() time.Time
}

// RequestBuilder assembles SearchRequests from stored eligibility data
type RequestBuilder struct {
	cfg BuilderConfig
}

// NewRequestBuilder creates a new request builder
func NewRequestBuilder(cfg BuilderConfig) *RequestBuilder {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &RequestBuilder{cfg: cfg}
}

// Build assembles the search request for symptoms at (lat, lng). It never
// fails: absent eligibility sections and unmapped insurers fall back to the
// configured defaults. The plan end date is always December 31 of next year,
// whatever the stored record says, so the plan reads as active.
func (b *RequestBuilder) Build(symptoms string, lat, lng float64, eligibility *entities.EligibilityRecord, profile *entities.UserProfile) entities.SearchRequest {
	if eligibility == nil {
		eligibility = &entities.EligibilityRecord{}
	}

	insuranceProvider := ""
	if profile != nil {
		insuranceProvider = profile.InsuranceProvider
	}

	payer := entities.Payer{
		EntityIdentifier:         b.cfg.PayerEntityIdentifier,
		EntityType:               b.cfg.PayerEntityType,
		LastName:                 b.cfg.DefaultPayerLastName,
		Name:                     b.cfg.DefaultPayerName,
		FederalTaxpayersIDNumber: b.cfg.DefaultPayerTaxID,
		ContactInformation: entities.ContactInformation{
			Contacts: b.contacts(eligibility.PayerInfo),
		},
	}
	if info := eligibility.PayerInfo; info != nil {
		payer.LastName = valueOr(info.LastName, payer.LastName)
		payer.Name = valueOr(info.Name, payer.Name)
		payer.FederalTaxpayersIDNumber = valueOr(info.FederalTaxpayersIDNumber, payer.FederalTaxpayersIDNumber)
	}

	planInformation := entities.PlanInformation{
		GroupNumber:      b.cfg.DefaultGroupNumber,
		GroupDescription: b.cfg.DefaultGroupDescription,
	}
	if info := eligibility.PlanInfo; info != nil {
		planInformation.GroupNumber = valueOr(info.GroupNumber, planInformation.GroupNumber)
		planInformation.GroupDescription = valueOr(info.GroupDescription, planInformation.GroupDescription)
	}

	planDates := entities.PlanDateInformation{
		PlanBegin:        b.cfg.DefaultPlanBegin,
		PlanEnd:          PlanEndDate(b.cfg.Now()),
		EligibilityBegin: b.cfg.DefaultEligibilityBegin,
	}
	if dates := eligibility.PlanDates; dates != nil {
		planDates.PlanBegin = valueOr(dates.PlanBegin, planDates.PlanBegin)
		planDates.EligibilityBegin = valueOr(dates.EligibilityBegin, planDates.EligibilityBegin)
	}

	return entities.SearchRequest{
		Symptoms:                symptoms,
		TradingPartnerServiceID: b.TradingPartnerID(insuranceProvider),
		Lat:                     lat,
		Lng:                     lng,
		Subscriber: entities.Subscriber{
			EntityIdentifier: b.cfg.SubscriberEntityIdentifier,
		},
		Payer:               payer,
		PlanInformation:     planInformation,
		PlanDateInformation: planDates,
		PlanStatus:          copyPlanStatuses(b.cfg.PlanStatuses),
		BenefitsInformation: copyBenefits(b.cfg.Benefits),
	}
}

// TradingPartnerID resolves an insurance provider name to its trading
// partner service id, or the default id when the name is empty or unmapped.
func (b *RequestBuilder) TradingPartnerID(insuranceProvider string) string {
	if id, ok := b.cfg.TradingPartners[insuranceProvider]; ok && insuranceProvider != "" {
		return id
	}
	return b.cfg.DefaultTradingPartnerID
}

// ProviderForTradingPartner returns the insurance provider name mapped to id.
// When several names share an id the alphabetically first one wins.
func (b *RequestBuilder) ProviderForTradingPartner(id string) (string, bool) {
	names := make([]string, 0, len(b.cfg.TradingPartners))
	for name, partnerID := range b.cfg.TradingPartners {
		if partnerID == id {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return names[0], true
}

func (b *RequestBuilder) contacts(info *entities.PayerInfo) []entities.Contact {
	if info == nil || info.Contacts == nil {
		out := make([]entities.Contact, len(b.cfg.DefaultContacts))
		copy(out, b.cfg.DefaultContacts)
		return out
	}

	out := make([]entities.Contact, 0, len(info.Contacts))
	for _, c := range info.Contacts {
		out = append(out, entities.Contact{
			CommunicationMode:   c.CommunicationMode,
			CommunicationNumber: c.CommunicationNumber,
		})
	}
	return out
}

// PlanEndDate returns December 31 of the year after now as YYYYMMDD.
func PlanEndDate(now time.Time) string {
	return fmt.Sprintf("%04d1231", now.Year()+1)
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyStringPtr(in *string) *string {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func copyPlanStatuses(in []entities.PlanStatus) []entities.PlanStatus {
	out := make([]entities.PlanStatus, len(in))
	for i, s := range in {
		s.ServiceTypeCodes = copyStrings(s.ServiceTypeCodes)
		out[i] = s
	}
	return out
}

func copyBenefits(in []entities.BenefitInformation) []entities.BenefitInformation {
	out := make([]entities.BenefitInformation, len(in))
	for i, b := range in {
		b.ServiceTypeCodes = copyStrings(b.ServiceTypeCodes)
		b.ServiceTypes = copyStrings(b.ServiceTypes)
		b.PlanCoverage = copyStringPtr(b.PlanCoverage)
		b.CoverageLevelCode = copyStringPtr(b.CoverageLevelCode)
		b.CoverageLevel = copyStringPtr(b.CoverageLevel)
		b.TimeQualifierCode = copyStringPtr(b.TimeQualifierCode)
		b.TimeQualifier = copyStringPtr(b.TimeQualifier)
		b.BenefitAmount = copyStringPtr(b.BenefitAmount)
		b.InPlanNetworkIndicatorCode = copyStringPtr(b.InPlanNetworkIndicatorCode)
		b.InPlanNetworkIndicator = copyStringPtr(b.InPlanNetworkIndicator)
		out[i] = b
	}
	return out
}
