package searchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/providers"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/observability"
	"github.com/zatekoja/hospitalcostsearch/pkg/config"
	apperrors "github.com/zatekoja/hospitalcostsearch/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const (
	searchPath   = "/search"
	validatePath = "/validate"
	healthPath   = "/health"
)

// HTTPClient talks to the insurance hospital search service. It is safe for
// concurrent use and holds no per-search state.
type HTTPClient struct {
	baseURL             string
	httpClient          *http.Client
	mockOnDecodeFailure bool
	metrics             *observability.Metrics
}

var _ providers.HospitalSearchProvider = (*HTTPClient)(nil)

// NewClient creates a search service client. metrics may be nil.
func NewClient(cfg *config.SearchConfig, metrics *observability.Metrics) (*HTTPClient, error) {
	trimmed := strings.TrimRight(cfg.BaseURL, "/")
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid search service URL %q", cfg.BaseURL))
	}

	return &HTTPClient{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		mockOnDecodeFailure: cfg.MockOnDecodeFailure,
		metrics:             metrics,
	}, nil
}

// Search posts req to /search. HTTP statuses of 400 and above yield a
// *StatusError carrying the response body. A body that does not decode is
// replaced by MockResponse when mock fallback is enabled.
func (c *HTTPClient) Search(ctx context.Context, req entities.SearchRequest) (*entities.SearchResponse, error) {
	ctx, span := observability.StartSpan(ctx, "searchapi.Search")
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("search.trading_partner_id", req.TradingPartnerServiceID),
		attribute.Bool("search.mock_fallback_enabled", c.mockOnDecodeFailure),
	)

	logger := observability.LoggerFromContext(ctx)
	start := time.Now()

	body, err := c.doJSON(ctx, http.MethodPost, searchPath, req)
	if err != nil {
		observability.RecordError(span, err)
		observability.RecordSearchCall(ctx, c.metrics, searchPath, errorOutcome(err), time.Since(start))
		return nil, err
	}

	resp := &entities.SearchResponse{}
	if err := json.Unmarshal(body, resp); err != nil {
		if !c.mockOnDecodeFailure {
			observability.RecordError(span, err)
			observability.RecordSearchCall(ctx, c.metrics, searchPath, "decode_error", time.Since(start))
			return nil, apperrors.NewDecodeError("failed to decode search response", err)
		}

		logger.Warn().Err(err).Msg("search response did not decode; substituting mock hospitals")
		observability.SetSpanAttributes(span, attribute.Bool("search.mock_fallback", true))
		observability.RecordSearchCall(ctx, c.metrics, searchPath, "mock_fallback", time.Since(start))
		return MockResponse(), nil
	}

	logger.Debug().
		Int("hospitals", len(resp.Hospitals)).
		Int("total_found", resp.TotalFound).
		Dur("elapsed", time.Since(start)).
		Msg("hospital search completed")
	observability.RecordSearchCall(ctx, c.metrics, searchPath, "success", time.Since(start))
	return resp, nil
}

// Validate posts req to /validate
func (c *HTTPClient) Validate(ctx context.Context, req entities.SearchRequest) (*entities.ValidationResponse, error) {
	ctx, span := observability.StartSpan(ctx, "searchapi.Validate")
	defer span.End()

	start := time.Now()
	body, err := c.doJSON(ctx, http.MethodPost, validatePath, req)
	if err != nil {
		observability.RecordError(span, err)
		observability.RecordSearchCall(ctx, c.metrics, validatePath, errorOutcome(err), time.Since(start))
		return nil, err
	}

	out := &entities.ValidationResponse{}
	if err := json.Unmarshal(body, out); err != nil {
		observability.RecordError(span, err)
		observability.RecordSearchCall(ctx, c.metrics, validatePath, "decode_error", time.Since(start))
		return nil, apperrors.NewDecodeError("failed to decode validation response", err)
	}
	observability.RecordSearchCall(ctx, c.metrics, validatePath, "success", time.Since(start))
	return out, nil
}

// Health queries /health
func (c *HTTPClient) Health(ctx context.Context) (*entities.HealthResponse, error) {
	body, err := c.doJSON(ctx, http.MethodGet, healthPath, nil)
	if err != nil {
		return nil, err
	}

	out := &entities.HealthResponse{}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, apperrors.NewDecodeError("failed to decode health response", err)
	}
	return out, nil
}

// doJSON performs one request and returns the body of a response with a
// status below 400. There are no retries.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to encode request", err)
		}
		observability.LoggerFromContext(ctx).Debug().
			Str("path", path).
			RawJSON("request", data).
			Msg("search service request")
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create request", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if requestID := observability.RequestIDFromContext(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewExternalError("search service request failed", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		statusErr := newStatusError(resp.StatusCode, body, readErr == nil && utf8.Valid(body))
		observability.LoggerFromContext(ctx).Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("body", statusErr.Message).
			Msg("search service returned error status")
		return nil, statusErr
	}

	if readErr != nil {
		return nil, apperrors.NewExternalError("failed to read search service response", readErr)
	}
	return body, nil
}

func errorOutcome(err error) string {
	if _, ok := AsStatusError(err); ok {
		return "status_error"
	}
	return "transport_error"
}
