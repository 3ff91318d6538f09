package routes

import (
	"net/http"

	"github.com/zatekoja/hospitalcostsearch/internal/api/handlers"
	"github.com/zatekoja/hospitalcostsearch/internal/api/middleware"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler *handlers.SearchHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(searchHandler *handlers.SearchHandler, allowedOrigins []string, metrics *observability.Metrics) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		searchHandler:  searchHandler,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.searchHandler.Health)

	// Search endpoints
	r.mux.HandleFunc("POST /api/search", r.searchHandler.Search)
	r.mux.HandleFunc("GET /api/search/mock", r.searchHandler.MockResponse)

	// Insurance endpoints
	r.mux.HandleFunc("POST /api/validate", r.searchHandler.Validate)

	// Remote search service
	r.mux.HandleFunc("GET /api/upstream/health", r.searchHandler.UpstreamHealth)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}
