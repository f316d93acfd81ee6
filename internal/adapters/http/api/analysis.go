package api

import (
	"net/http"

	"github.com/okian/linepulse/internal/domain/model"
)

// AnalysisHandler serves the read-only analysis endpoints.
type AnalysisHandler struct {
	deps   Dependencies
	filter func(*http.Request) (model.Filter, error)
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps Dependencies, filter func(*http.Request) (model.Filter, error)) *AnalysisHandler {
	return &AnalysisHandler{deps: deps, filter: filter}
}

// HandleAnalysis handles GET /api/analysis.
func (h *AnalysisHandler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	f, ok := h.read(w, r)
	if !ok {
		return
	}
	res, err := h.deps.Analyze(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSessions handles GET /api/sessions.
func (h *AnalysisHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	f, ok := h.read(w, r)
	if !ok {
		return
	}
	res, err := h.deps.Sessions(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(res), "sessions": res})
}

// HandleKPIs handles GET /api/kpis.
func (h *AnalysisHandler) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	f, ok := h.read(w, r)
	if !ok {
		return
	}
	res, err := h.deps.KPIs(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AnalysisHandler) read(w http.ResponseWriter, r *http.Request) (model.Filter, bool) {
	if !allowMethods(w, r, http.MethodGet) {
		return model.Filter{}, false
	}
	f, err := h.filter(r)
	if err != nil {
		writeDomainError(w, err)
		return model.Filter{}, false
	}
	return f, true
}
