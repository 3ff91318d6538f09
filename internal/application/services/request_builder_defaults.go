package services

import "github.com/zatekoja/hospitalcostsearch/internal/domain/entities"

// DefaultTradingPartnerID is used for insurers missing from the trading partner table
const DefaultTradingPartnerID = "62308"

// DefaultTradingPartners returns the insurers the search service supports
func DefaultTradingPartners() map[string]string {
	return map[string]string{
		"Aetna":                         "60054",
		"Cigna":                         "62308",
		"UnitedHealthcare":              "87726",
		"BlueCross BlueShield of Texas": "G84980",
	}
}

// DefaultBuilderConfig returns the tables the mobile client shipped with
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		TradingPartners:         DefaultTradingPartners(),
		DefaultTradingPartnerID: DefaultTradingPartnerID,

		SubscriberEntityIdentifier: "Insured or Subscriber",
		PayerEntityIdentifier:      "Payer",
		PayerEntityType:            "Non-Person Entity",
		DefaultPayerName:           "CHLIC",
		DefaultPayerLastName:       "CHLIC",
		DefaultPayerTaxID:          "591056496",
		DefaultContacts: []entities.Contact{
			{CommunicationMode: "Telephone", CommunicationNumber: "8002446224"},
			{CommunicationMode: "Uniform Resource Locator (URL)", CommunicationNumber: "cignaforhcp.cigna.com"},
		},

		DefaultGroupNumber:      "6500216",
		DefaultGroupDescription: "Simonis - Bechtelar",

		DefaultPlanBegin:        "20240101",
		DefaultEligibilityBegin: "20210101",

		PlanStatuses: []entities.PlanStatus{
			{StatusCode: "1", Status: "Active Coverage", PlanDetails: "Open Access Plus", ServiceTypeCodes: []string{"30"}},
			{StatusCode: "1", Status: "Active Coverage", PlanDetails: "Open Access Plus", ServiceTypeCodes: []string{"A6"}},
		},
		Benefits: []entities.BenefitInformation{
			{
				Code:             "1",
				Name:             "Active Coverage",
				ServiceTypeCodes: []string{"30"},
				ServiceTypes:     []string{"Health Benefit Plan Coverage"},
				PlanCoverage:     strPtr("Open Access Plus"),
			},
			{
				Code:                       "C",
				Name:                       "Deductible",
				ServiceTypeCodes:           []string{"30"},
				ServiceTypes:               []string{"Health Benefit Plan Coverage"},
				CoverageLevelCode:          strPtr("IND"),
				CoverageLevel:              strPtr("Individual"),
				TimeQualifierCode:          strPtr("23"),
				TimeQualifier:              strPtr("Calendar Year"),
				BenefitAmount:              strPtr("5000"),
				InPlanNetworkIndicatorCode: strPtr("Y"),
				InPlanNetworkIndicator:     strPtr("Yes"),
			},
		},
	}
}

func strPtr(s string) *string {
	return &s
}
