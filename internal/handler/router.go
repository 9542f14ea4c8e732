package handler

import (
	"net/http"

	"github.com/kestrel-hq/kestrel/pkg/middleware"
)

// Router handles HTTP routing
type Router struct {
	testHandler   *TestHandler
	logHandler    *LogHandler
	healthHandler *HealthHandler
	corsConfig    middleware.CORSConfig
}

// NewRouter creates a new router
func NewRouter(
	testHandler *TestHandler,
	logHandler *LogHandler,
	healthHandler *HealthHandler,
	corsConfig middleware.CORSConfig,
) *Router {
	return &Router{
		testHandler:   testHandler,
		logHandler:    logHandler,
		healthHandler: healthHandler,
		corsConfig:    corsConfig,
	}
}

// Handler returns the configured HTTP handler with middleware
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health endpoints (no middleware)
	mux.HandleFunc("/health", rt.healthHandler.Health)
	mux.HandleFunc("/ready", rt.healthHandler.Ready)

	// API endpoints
	mux.HandleFunc("/api/v1/webhooks/test", rt.handleTest)
	mux.HandleFunc("/api/v1/webhook-logs", rt.logHandler.List)

	// Apply middleware (CORS first to handle preflight requests)
	handler := middleware.CORS(rt.corsConfig)(mux)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)
	handler = middleware.CorrelationID(handler)

	return handler
}

// handleTest routes the webhook test endpoint
func (rt *Router) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rt.testHandler.Test(w, r)
}
