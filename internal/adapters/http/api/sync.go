package api

import "net/http"

// SyncHandler triggers sync passes.
type SyncHandler struct {
	deps Dependencies
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(deps Dependencies) *SyncHandler {
	return &SyncHandler{deps: deps}
}

// HandleSync handles POST /api/sync. It runs a pass and returns its report.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	rep, err := h.deps.Sync(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
