package api

import (
	"fmt"
	"net/http"

	"github.com/okian/linepulse/internal/domain/model"
)

// ProductionHandler serves the floor board and per-worker breakdowns.
type ProductionHandler struct {
	deps   Dependencies
	filter func(*http.Request) (model.Filter, error)
}

// NewProductionHandler creates a new production handler.
func NewProductionHandler(deps Dependencies, filter func(*http.Request) (model.Filter, error)) *ProductionHandler {
	return &ProductionHandler{deps: deps, filter: filter}
}

// HandleProduction handles GET /api/production?process=.
func (h *ProductionHandler) HandleProduction(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	p, err := model.ParseProcess(r.URL.Query().Get("process"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	res, err := h.deps.Production(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleWorkerHourly handles GET /api/worker_hourly. It takes the analysis
// filter plus a required worker.
func (h *ProductionHandler) HandleWorkerHourly(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	worker := r.URL.Query().Get("worker")
	if worker == "" {
		writeDomainError(w, fmt.Errorf("%w: worker is required", ErrBadRequest))
		return
	}
	f, err := h.filter(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	res, err := h.deps.WorkerActivity(r.Context(), f, worker)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
