package entities

// ValidationResponse is returned by the search service's /validate endpoint
type ValidationResponse struct {
	Valid             bool                   `json:"valid"`
	InsuranceProvider string                 `json:"insurance_provider"`
	Message           string                 `json:"message,omitempty"`
	Error             string                 `json:"error,omitempty"`
	PlanInfo          map[string]interface{} `json:"plan_info"`
	CostInfo          map[string]interface{} `json:"cost_info,omitempty"`
}

// HealthResponse is returned by the search service's /health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
