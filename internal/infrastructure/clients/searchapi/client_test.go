package searchapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/observability"
	"github.com/zatekoja/hospitalcostsearch/pkg/config"
	apperrors "github.com/zatekoja/hospitalcostsearch/pkg/errors"
)

const validResponse = `{
	"status": "success",
	"message": "Found 1 hospitals",
	"insurance_provider": "Aetna",
	"location": {"lat": 41.88, "lng": -87.63},
	"symptoms": "broken arm",
	"hospitals": [{
		"name": "Northwestern Memorial Hospital",
		"address": "251 E Huron St, Chicago, IL 60611",
		"phone": "(312) 926-2000",
		"hospital_type": "Academic Medical Center",
		"accepts_insurance": true,
		"estimated_costs": {
			"procedure_name": "X-ray and cast",
			"average_cost": 1800,
			"with_insurance_cost": 450,
			"patient_responsibility": 450,
			"insurance_covers": 1350
		}
	}],
	"total_found": 1
}`

func newTestClient(t *testing.T, url string, mockFallback bool) *HTTPClient {
	t.Helper()
	client, err := NewClient(&config.SearchConfig{
		BaseURL:             url,
		Timeout:             5 * time.Second,
		MockOnDecodeFailure: mockFallback,
	}, nil)
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "://missing-scheme", "/relative/path"} {
		_, err := NewClient(&config.SearchConfig{BaseURL: raw}, nil)
		require.Error(t, err, raw)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), raw)
	}
}

func TestHTTPClient_Search_Success(t *testing.T) {
	var gotPath, gotMethod, gotContentType string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validResponse))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/", false)
	req := entities.SearchRequest{
		TradingPartnerServiceID: "60054",
		Symptoms:                "broken arm",
		Lat:                     41.88,
		Lng:                     -87.63,
	}

	resp, err := client.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "/search", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "60054", gotBody["tradingPartnerServiceId"])
	assert.Equal(t, "broken arm", gotBody["symptoms"])

	assert.Equal(t, "Aetna", resp.InsuranceProvider)
	require.Len(t, resp.Hospitals, 1)
	assert.Equal(t, "Northwestern Memorial Hospital", resp.Hospitals[0].Name)
	assert.Equal(t, 1350.0, resp.Hospitals[0].EstimatedCosts.InsuranceCovers)
	assert.Nil(t, resp.CostAnalysis)
}

func TestHTTPClient_Search_PropagatesRequestID(t *testing.T) {
	var gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(validResponse))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, false)
	ctx := observability.WithRequestID(context.Background(), "req-42")

	_, err := client.Search(ctx, entities.SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, "req-42", gotRequestID)
}

func TestHTTPClient_Search_StatusErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        []byte
		wantMessage string
	}{
		{
			name:        "body returned verbatim",
			status:      http.StatusBadRequest,
			body:        []byte(`{"detail":"Insurance validation failed: Coverage expired (ended 20231231)"}`),
			wantMessage: `{"detail":"Insurance validation failed: Coverage expired (ended 20231231)"}`,
		},
		{
			name:        "plain text server error",
			status:      http.StatusInternalServerError,
			body:        []byte("Internal Server Error"),
			wantMessage: "Internal Server Error",
		},
		{
			name:        "empty body is empty text",
			status:      http.StatusBadGateway,
			wantMessage: "",
		},
		{
			name:        "body is not text",
			status:      http.StatusServiceUnavailable,
			body:        []byte{0xff, 0xfe, 0xfd},
			wantMessage: "Server returned status code 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write(tt.body)
			}))
			defer server.Close()

			// Status errors are never replaced by the mock payload.
			client := newTestClient(t, server.URL, true)
			resp, err := client.Search(context.Background(), entities.SearchRequest{})
			require.Error(t, err)
			assert.Nil(t, resp)

			statusErr, ok := AsStatusError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.wantMessage, err.Error())
		})
	}
}

func TestHTTPClient_Search_DecodeFailure(t *testing.T) {
	bodies := map[string]string{
		"not json":          "<html>oops</html>",
		"missing hospitals": `{"status":"success","message":"","insurance_provider":"Cigna","location":{"lat":1,"lng":2},"symptoms":"x","total_found":0}`,
		"error envelope":    `{"detail":"something went wrong"}`,
	}

	for name, body := range bodies {
		t.Run(name+"/mock fallback", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, true)
			resp, err := client.Search(context.Background(), entities.SearchRequest{})
			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Len(t, resp.Hospitals, 6)
			assert.Equal(t, 6, resp.TotalFound)
			assert.NotNil(t, resp.CostAnalysis)
		})

		t.Run(name+"/decode error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, false)
			resp, err := client.Search(context.Background(), entities.SearchRequest{})
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDecode))
		})
	}
}

func TestHTTPClient_Search_WholeFloatCoverageIsNotMasked(t *testing.T) {
	body := strings.Replace(validResponse, `"total_found": 1`,
		`"total_found": 1, "cost_analysis": {"symptoms": "broken arm", "likely_procedures": ["X-ray"], "deductible_info": {"annual_deductible": 1000, "deductible_met": false, "remaining_deductible": 400}, "coverage_details": {"coverage_percentage": 80.0, "in_network": true}}`, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)
	resp, err := client.Search(context.Background(), entities.SearchRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Hospitals, 1)
	assert.Equal(t, "Northwestern Memorial Hospital", resp.Hospitals[0].Name)
	require.NotNil(t, resp.CostAnalysis)
	assert.Equal(t, 80, resp.CostAnalysis.CoverageDetails.CoveragePercentage)
}

func TestHTTPClient_Search_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, url, true)
	resp, err := client.Search(context.Background(), entities.SearchRequest{})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	_, isStatus := AsStatusError(err)
	assert.False(t, isStatus)
}

func TestHTTPClient_Search_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(validResponse))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, server.URL, true)
	_, err := client.Search(ctx, entities.SearchRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPClient_Validate(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"valid":false,"insurance_provider":"Cigna","error":"Coverage expired (ended 20231231)","plan_info":{"group_number":"6500216"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)
	resp, err := client.Validate(context.Background(), entities.SearchRequest{TradingPartnerServiceID: "62308"})
	require.NoError(t, err)

	assert.Equal(t, "/validate", gotPath)
	assert.False(t, resp.Valid)
	assert.Equal(t, "Cigna", resp.InsuranceProvider)
	assert.Equal(t, "Coverage expired (ended 20231231)", resp.Error)
	assert.Equal(t, "6500216", resp.PlanInfo["group_number"])
}

func TestHTTPClient_Validate_DecodeFailureHasNoFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("nope"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, true)
	_, err := client.Validate(context.Background(), entities.SearchRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDecode))
}

func TestHTTPClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"insurance-hospital-agent"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, false)
	resp, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "insurance-hospital-agent", resp.Service)
}

func TestMockResponse_ReturnsFreshCopies(t *testing.T) {
	first := MockResponse()
	second := MockResponse()

	require.Len(t, first.Hospitals, 6)
	assert.Equal(t, "Cigna", first.InsuranceProvider)
	first.Hospitals[0].Name = "changed"
	assert.NotEqual(t, "changed", second.Hospitals[0].Name)
}
