package entities

// SearchRequest is the eligibility search payload sent to the hospital
// search service. It mirrors an X12 270/271 eligibility response shape.
type SearchRequest struct {
	Symptoms                string               `json:"symptoms"`
	TradingPartnerServiceID string               `json:"tradingPartnerServiceId"`
	Lat                     float64              `json:"lat"`
	Lng                     float64              `json:"lng"`
	Subscriber              Subscriber           `json:"subscriber"`
	Payer                   Payer                `json:"payer"`
	PlanInformation         PlanInformation      `json:"planInformation"`
	PlanDateInformation     PlanDateInformation  `json:"planDateInformation"`
	PlanStatus              []PlanStatus         `json:"planStatus"`
	BenefitsInformation     []BenefitInformation `json:"benefitsInformation"`
}

// Subscriber marks the insured party
type Subscriber struct {
	EntityIdentifier string `json:"entityIdentifier"`
}

// Payer is the payer identity and contact block
type Payer struct {
	EntityIdentifier         string             `json:"entityIdentifier"`
	EntityType               string             `json:"entityType"`
	LastName                 string             `json:"lastName"`
	Name                     string             `json:"name"`
	FederalTaxpayersIDNumber string             `json:"federalTaxpayersIdNumber"`
	ContactInformation       ContactInformation `json:"contactInformation"`
}

// ContactInformation wraps the payer contacts
type ContactInformation struct {
	Contacts []Contact `json:"contacts"`
}

// Contact is a (mode, number) pair such as Telephone / 8002446224
type Contact struct {
	CommunicationMode   string `json:"communicationMode"`
	CommunicationNumber string `json:"communicationNumber"`
}

// PlanInformation carries the plan group
type PlanInformation struct {
	GroupNumber      string `json:"groupNumber"`
	GroupDescription string `json:"groupDescription"`
}

// PlanDateInformation holds YYYYMMDD dates
type PlanDateInformation struct {
	PlanBegin        string `json:"planBegin"`
	PlanEnd          string `json:"planEnd"`
	EligibilityBegin string `json:"eligibilityBegin"`
}

// PlanStatus is one plan status entry
type PlanStatus struct {
	StatusCode       string   `json:"statusCode"`
	Status           string   `json:"status"`
	PlanDetails      string   `json:"planDetails"`
	ServiceTypeCodes []string `json:"serviceTypeCodes"`
}

// BenefitInformation is one benefit entry. Optional fields are omitted from
// the wire payload when nil.
type BenefitInformation struct {
	Code                       string   `json:"code"`
	Name                       string   `json:"name"`
	ServiceTypeCodes           []string `json:"serviceTypeCodes,omitempty"`
	ServiceTypes               []string `json:"serviceTypes,omitempty"`
	PlanCoverage               *string  `json:"planCoverage,omitempty"`
	CoverageLevelCode          *string  `json:"coverageLevelCode,omitempty"`
	CoverageLevel              *string  `json:"coverageLevel,omitempty"`
	TimeQualifierCode          *string  `json:"timeQualifierCode,omitempty"`
	TimeQualifier              *string  `json:"timeQualifier,omitempty"`
	BenefitAmount              *string  `json:"benefitAmount,omitempty"`
	InPlanNetworkIndicatorCode *string  `json:"inPlanNetworkIndicatorCode,omitempty"`
	InPlanNetworkIndicator     *string  `json:"inPlanNetworkIndicator,omitempty"`
}
