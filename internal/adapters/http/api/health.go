package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler answers liveness checks with the current metric snapshot, so
// one scrape of /healthz both proves the process is serving and collects
// the sync, cache and analysis series.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler serves g in the exposition format the caller negotiates.
func NewHealthHandler(g prometheus.Gatherer) *HealthHandler {
	return &HealthHandler{metrics: promhttp.HandlerFor(g, promhttp.HandlerOpts{})}
}

// HandleHealth handles GET and HEAD /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	h.metrics.ServeHTTP(w, r)
}
