package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// SearchResponse is the hospital search result returned by the search service
type SearchResponse struct {
	Status            string              `json:"status"`
	Message           string              `json:"message"`
	InsuranceProvider string              `json:"insurance_provider"`
	Location          Location            `json:"location"`
	Symptoms          string              `json:"symptoms"`
	Hospitals         []HospitalWithCosts `json:"hospitals"`
	CostAnalysis      *CostAnalysis       `json:"cost_analysis,omitempty"`
	TotalFound        int                 `json:"total_found"`
}

// Location is a lat/lng pair
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HospitalWithCosts is a hospital with the estimated cost of the likely procedure.
// InsuranceCovers + PatientResponsibility is expected to approximate
// AverageCost but the service does not guarantee it.
type HospitalWithCosts struct {
	Name             string         `json:"name"`
	Address          string         `json:"address"`
	Phone            string         `json:"phone"`
	HospitalType     string         `json:"hospital_type"`
	AcceptsInsurance bool           `json:"accepts_insurance"`
	EstimatedCosts   EstimatedCosts `json:"estimated_costs"`
}

// EstimatedCosts holds currency amounts for one procedure
type EstimatedCosts struct {
	ProcedureName         string  `json:"procedure_name"`
	AverageCost           float64 `json:"average_cost"`
	WithInsuranceCost     float64 `json:"with_insurance_cost"`
	PatientResponsibility float64 `json:"patient_responsibility"`
	InsuranceCovers       float64 `json:"insurance_covers"`
}

// CostAnalysis summarises the likely procedures and the user's deductible
type CostAnalysis struct {
	Symptoms         string          `json:"symptoms"`
	LikelyProcedures []string        `json:"likely_procedures"`
	DeductibleInfo   DeductibleInfo  `json:"deductible_info"`
	CoverageDetails  CoverageDetails `json:"coverage_details"`
}

// DeductibleInfo describes the annual deductible
type DeductibleInfo struct {
	AnnualDeductible    float64 `json:"annual_deductible"`
	DeductibleMet       bool    `json:"deductible_met"`
	RemainingDeductible float64 `json:"remaining_deductible"`
}

// CoverageDetails describes coverage percentage (0-100) and network status
type CoverageDetails struct {
	CoveragePercentage int  `json:"coverage_percentage"`
	InNetwork          bool `json:"in_network"`
}

// The search service contract treats every field except cost_analysis as
// required; a payload missing one of them does not decode.

// UnmarshalJSON decodes a SearchResponse, rejecting missing required keys
func (r *SearchResponse) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "status", "message", "insurance_provider", "location", "symptoms", "hospitals", "total_found"); err != nil {
		return fmt.Errorf("search response: %w", err)
	}
	type alias SearchResponse
	return json.Unmarshal(data, (*alias)(r))
}

// UnmarshalJSON decodes a Location, rejecting missing required keys
func (l *Location) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "lat", "lng"); err != nil {
		return fmt.Errorf("location: %w", err)
	}
	type alias Location
	return json.Unmarshal(data, (*alias)(l))
}

// UnmarshalJSON decodes a HospitalWithCosts, rejecting missing required keys
func (h *HospitalWithCosts) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "name", "address", "phone", "hospital_type", "accepts_insurance", "estimated_costs"); err != nil {
		return fmt.Errorf("hospital: %w", err)
	}
	type alias HospitalWithCosts
	return json.Unmarshal(data, (*alias)(h))
}

// UnmarshalJSON decodes EstimatedCosts, rejecting missing required keys
func (c *EstimatedCosts) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "procedure_name", "average_cost", "with_insurance_cost", "patient_responsibility", "insurance_covers"); err != nil {
		return fmt.Errorf("estimated_costs: %w", err)
	}
	type alias EstimatedCosts
	return json.Unmarshal(data, (*alias)(c))
}

// UnmarshalJSON decodes a CostAnalysis, rejecting missing required keys
func (c *CostAnalysis) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "symptoms", "likely_procedures", "deductible_info", "coverage_details"); err != nil {
		return fmt.Errorf("cost_analysis: %w", err)
	}
	type alias CostAnalysis
	return json.Unmarshal(data, (*alias)(c))
}

// UnmarshalJSON decodes DeductibleInfo, rejecting missing required keys
func (d *DeductibleInfo) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "annual_deductible", "deductible_met", "remaining_deductible"); err != nil {
		return fmt.Errorf("deductible_info: %w", err)
	}
	type alias DeductibleInfo
	return json.Unmarshal(data, (*alias)(d))
}

// UnmarshalJSON decodes CoverageDetails, rejecting missing required keys
func (c *CoverageDetails) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "coverage_percentage", "in_network"); err != nil {
		return fmt.Errorf("coverage_details: %w", err)
	}
	// Whole-valued floats such as 80.0 are accepted as integers.
	var raw struct {
		CoveragePercentage json.Number `json:"coverage_percentage"`
		InNetwork          bool        `json:"in_network"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("coverage_details: %w", err)
	}
	pct, err := raw.CoveragePercentage.Float64()
	if err != nil || pct != math.Trunc(pct) || math.Abs(pct) > math.MaxInt32 {
		return fmt.Errorf("coverage_details: coverage_percentage %s is not a whole number", raw.CoveragePercentage)
	}
	c.CoveragePercentage = int(pct)
	c.InNetwork = raw.InNetwork
	return nil
}

var jsonNull = []byte("null")

// requireKeys checks that data is a JSON object holding every key with a
// non-null value.
func requireKeys(data []byte, keys ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("expected object, got null")
	}
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			return fmt.Errorf("missing required key %q", key)
		}
		if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
			return fmt.Errorf("required key %q is null", key)
		}
	}
	return nil
}
