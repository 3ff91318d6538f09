package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/zatekoja/hospitalcostsearch/internal/application/services"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/providers"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/clients/searchapi"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/hospitalcostsearch/pkg/errors"
)

const maxBodyBytes = 1 << 20

// SearchBackend is the part of the search service the handlers use
type SearchBackend interface {
	Validate(ctx context.Context, userID string) (*services.ValidationOutcome, error)
	Health(ctx context.Context) (*entities.HealthResponse, error)
}

// SearchHandler serves hospital searches and insurance validation
type SearchHandler struct {
	sessions    *services.SessionRegistry
	backend     SearchBackend
	serviceName string
	validate    *validator.Validate
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(sessions *services.SessionRegistry, backend SearchBackend, serviceName string) *SearchHandler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &SearchHandler{
		sessions:    sessions,
		backend:     backend,
		serviceName: serviceName,
		validate:    validate,
	}
}

type searchRequest struct {
	UserID   string   `json:"user_id" validate:"required,max=128"`
	Symptoms string   `json:"symptoms" validate:"required,max=500"`
	Lat      *float64 `json:"lat" validate:"required_with=Lng,omitempty,latitude"`
	Lng      *float64 `json:"lng" validate:"required_with=Lat,omitempty,longitude"`
}

type validateRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}

// Search handles POST /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !h.decode(w, r, &req) {
		return
	}

	params := services.SearchParams{UserID: req.UserID, Symptoms: req.Symptoms}
	if req.Lat != nil && req.Lng != nil {
		params.Location = &providers.Coordinates{Latitude: *req.Lat, Longitude: *req.Lng}
	}

	outcome, err := h.sessions.Search(r.Context(), req.UserID, params)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			respondWithError(w, http.StatusConflict, "search superseded or cancelled")
			return
		}
		h.respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, outcome)
}

// Validate handles POST /api/validate
func (h *SearchHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !h.decode(w, r, &req) {
		return
	}

	outcome, err := h.backend.Validate(r.Context(), req.UserID)
	if err != nil {
		h.respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, outcome)
}

// Health handles GET /health
func (h *SearchHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, entities.HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
	})
}

// UpstreamHealth handles GET /api/upstream/health
func (h *SearchHandler) UpstreamHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.backend.Health(r.Context())
	if err != nil {
		h.respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, health)
}

// MockResponse handles GET /api/search/mock
func (h *SearchHandler) MockResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(searchapi.MockResponseJSON())
}

func (h *SearchHandler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dest); err != nil {
		respondWithError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func (h *SearchHandler) respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.LoggerFromContext(r.Context())

	if statusErr, ok := searchapi.AsStatusError(err); ok {
		logger.Warn().Int("upstream_status", statusErr.StatusCode).Msg("search service rejected request")
		respondWithError(w, http.StatusBadGateway, statusErr.Message)
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		case apperrors.ErrorTypeExternal, apperrors.ErrorTypeDecode:
			logger.Error().Err(err).Msg("search service call failed")
			respondWithError(w, http.StatusBadGateway, appErr.Message)
			return
		}
	}

	logger.Error().Err(err).Msg("request failed")
	respondWithError(w, http.StatusInternalServerError, "internal error")
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "invalid request"
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
