// Package api exposes the analysis core over a small JSON HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/linepulse/internal/app"
	"github.com/okian/linepulse/internal/domain/model"
	"github.com/okian/linepulse/internal/syncer"
	"github.com/okian/linepulse/pkg/metrics"
)

const dateLayout = time.DateOnly

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Analyze(ctx context.Context, f model.Filter) (service.Analysis, error)
	Sessions(ctx context.Context, f model.Filter) ([]model.Session, error)
	KPIs(ctx context.Context, f model.Filter) (model.KPI, error)
	Sync(ctx context.Context) (syncer.Report, error)
	Production(ctx context.Context, p model.Process) (service.Production, error)
	WorkerActivity(ctx context.Context, f model.Filter, worker string) (service.WorkerActivity, error)
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used for default query dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone query dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// Server wires HTTP routes for the analysis API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	analysisHandler   *AnalysisHandler
	productionHandler *ProductionHandler
	syncHandler       *SyncHandler

	now func() time.Time
	loc *time.Location
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler(metrics.GetRegistry())
	s.statsHandler = NewStatsHandler(statsProvider)
	s.analysisHandler = NewAnalysisHandler(deps, s.parseFilter)
	s.productionHandler = NewProductionHandler(deps, s.parseFilter)
	s.syncHandler = NewSyncHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/analysis", MetricsMiddleware(s.analysisHandler.HandleAnalysis, "analysis"))
	mux.HandleFunc("/api/sessions", MetricsMiddleware(s.analysisHandler.HandleSessions, "sessions"))
	mux.HandleFunc("/api/kpis", MetricsMiddleware(s.analysisHandler.HandleKPIs, "kpis"))
	mux.HandleFunc("/api/production", MetricsMiddleware(s.productionHandler.HandleProduction, "production"))
	mux.HandleFunc("/api/worker_hourly", MetricsMiddleware(s.productionHandler.HandleWorkerHourly, "worker_hourly"))
	mux.HandleFunc("/api/sync", MetricsMiddleware(s.syncHandler.HandleSync, "sync"))
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

// parseFilter reads process, start, end, workers, ship_start and ship_end.
// Missing dates default to today.
func (s *Server) parseFilter(r *http.Request) (model.Filter, error) {
	q := r.URL.Query()
	p, err := model.ParseProcess(q.Get("process"))
	if err != nil {
		return model.Filter{}, err
	}
	today := model.Day(s.now().In(s.loc))

	f := model.Filter{Process: p, StartDate: today, EndDate: today}
	if f.StartDate, err = s.date(q.Get("start"), today); err != nil {
		return model.Filter{}, fmt.Errorf("start: %w", err)
	}
	if f.EndDate, err = s.date(q.Get("end"), today); err != nil {
		return model.Filter{}, fmt.Errorf("end: %w", err)
	}
	if raw := strings.TrimSpace(q.Get("workers")); raw != "" {
		for _, w := range strings.Split(raw, ",") {
			if w = strings.TrimSpace(w); w != "" {
				f.WorkerIDs = append(f.WorkerIDs, w)
			}
		}
	}
	if f.ShippingStart, err = s.optionalDate(q.Get("ship_start")); err != nil {
		return model.Filter{}, fmt.Errorf("ship_start: %w", err)
	}
	if f.ShippingEnd, err = s.optionalDate(q.Get("ship_end")); err != nil {
		return model.Filter{}, fmt.Errorf("ship_end: %w", err)
	}
	return f, f.Validate()
}

func (s *Server) date(raw string, def time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseInLocation(dateLayout, raw, s.loc)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return d, nil
}

func (s *Server) optionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := s.date(raw, time.Time{})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// allowMethods answers 405 with an Allow header unless r uses one of methods.
func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	return false
}

// writeDomainError maps core errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidFilter),
		errors.Is(err, model.ErrUnknownProcess),
		errors.Is(err, ErrBadDate),
		errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, syncer.ErrSyncInProgress):
		writeError(w, http.StatusConflict, "sync_in_progress", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
