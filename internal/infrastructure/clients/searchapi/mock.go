package searchapi

import (
	_ "embed"
	"encoding/json"

	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
)

//go:embed mock_response.json
var mockResponseJSON []byte

// MockResponse returns the development payload: six New York hospitals with
// chest pain cost estimates and a cost analysis block. Each call returns a
// fresh value.
func MockResponse() *entities.SearchResponse {
	resp := &entities.SearchResponse{}
	if err := json.Unmarshal(mockResponseJSON, resp); err != nil {
		return &entities.SearchResponse{
			Status:            "success",
			Message:           "Mock data",
			InsuranceProvider: "Cigna",
			Location:          entities.Location{Lat: 40.71427, Lng: -74.00597},
			Symptoms:          "chest pain",
			Hospitals:         []entities.HospitalWithCosts{},
		}
	}
	return resp
}

// MockResponseJSON returns the raw development payload
func MockResponseJSON() []byte {
	out := make([]byte, len(mockResponseJSON))
	copy(out, mockResponseJSON)
	return out
}
