package api

import "net/http"

// StatsProvider reports the service's runtime state: start time, tracked
// files, last sync pass and cache backends.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves /stats.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
