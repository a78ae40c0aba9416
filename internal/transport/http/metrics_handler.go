package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MetricsHandler exposes the Prometheus scrape endpoint
type MetricsHandler struct {
	exposition http.Handler
}

// NewMetricsHandler wraps the exposition handler of the metrics registry.
// A nil handler disables the endpoint.
func NewMetricsHandler(exposition http.Handler) *MetricsHandler {
	return &MetricsHandler{exposition: exposition}
}

// Enabled reports whether metrics are exported.
func (h *MetricsHandler) Enabled() bool {
	return h.exposition != nil
}

// Routes sets up the metrics route
func (h *MetricsHandler) Routes(r chi.Router) {
	if h.Enabled() {
		r.Method(http.MethodGet, "/metrics", h.exposition)
	}
}
