package http

import (
	"net/http"

	"salespulse/internal/infrastructure"
)

// MetricsHandler serves the Prometheus scrape endpoint.
type MetricsHandler struct {
	prometheus http.Handler
}

// NewMetricsHandler wraps the exporter handler of providers. Metrics that
// are disabled answer 404.
func NewMetricsHandler(providers *infrastructure.OTelProviders) *MetricsHandler {
	h := &MetricsHandler{}
	if providers != nil {
		h.prometheus = providers.PrometheusHTTP
	}
	return h
}

// Enabled reports whether a scrape handler is available.
func (h *MetricsHandler) Enabled() bool {
	return h.prometheus != nil
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		http.NotFound(w, r)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
