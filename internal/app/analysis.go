package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/linepulse/internal/adapters/cache/sessioncache"
	"github.com/okian/linepulse/internal/adapters/eventlog"
	"github.com/okian/linepulse/internal/domain/aggregate"
	"github.com/okian/linepulse/internal/domain/model"
	"github.com/okian/linepulse/internal/domain/scoring"
	"github.com/okian/linepulse/internal/domain/session"
	"github.com/okian/linepulse/pkg/logger"
	"github.com/okian/linepulse/pkg/metrics"
)

// Analysis is the full result of one filtered query.
type Analysis struct {
	Sessions []model.Session                    `json:"sessions"`
	Workers  map[string]model.WorkerPerformance `json:"workers"`
	KPI      model.KPI                          `json:"kpi"`
	Metrics  scoring.MetricSet                  `json:"metrics"`
	Table    []scoring.NormalizedRow            `json:"table"`
}

// Analyze loads the sessions matching f, aggregates them per worker against
// the last week's history, scores them and reduces the KPIs. Abandoned
// packaging trays are left out, and workers without output are neither
// scored nor returned.
func (s *Service) Analyze(ctx context.Context, f model.Filter) (Analysis, error) {
	began := time.Now()
	sessions, err := s.productive(ctx, f)
	if err != nil {
		return Analysis{}, err
	}

	now := s.now().In(s.loc)
	today := model.Day(now)
	history, err := s.productive(ctx, model.Filter{
		Process:   f.Process,
		StartDate: today.AddDate(0, 0, -historyDays),
		EndDate:   today,
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("load history: %w", err)
	}

	set := s.engine.MetricSet(f.Process)
	perfs := aggregate.Producing(aggregate.Aggregate(sessions, history, now))
	workers, table := s.engine.Apply(perfs, set)

	metrics.RecordAnalysis(f.Process.Key(), float64(time.Since(began).Milliseconds()))
	metrics.UpdateWorkersScored(len(workers))
	return Analysis{
		Sessions: sessions,
		Workers:  workers,
		KPI:      aggregate.KPIs(sessions),
		Metrics:  set,
		Table:    table,
	}, nil
}

// KPIs reduces the sessions matching f, without abandoned packaging trays.
func (s *Service) KPIs(ctx context.Context, f model.Filter) (model.KPI, error) {
	sessions, err := s.productive(ctx, f)
	if err != nil {
		return model.KPI{}, err
	}
	return aggregate.KPIs(sessions), nil
}

// Sessions returns the sessions matching f, served from the session cache
// when possible.
func (s *Service) Sessions(ctx context.Context, f model.Filter) ([]model.Session, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	key := sessioncache.KeyFor(f)
	if cached, ok := s.sessions.Get(ctx, key); ok {
		return cached, nil
	}

	loaded, err := s.load(ctx, f.Process, f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	out := aggregate.Filter(loaded, f)
	if err := s.sessions.Set(ctx, key, out); err != nil {
		s.logger.Warn(ctx, "session cache write failed", logger.String("key", key), logger.Error(err))
	}
	return out, nil
}

// load reads every log file of p that may hold sessions in [start, end],
// through the file cache.
func (s *Service) load(ctx context.Context, p model.Process, start, end time.Time) ([]model.Session, error) {
	files, err := eventlog.Discover(s.cfg.LogDir, s.patterns)
	if err != nil {
		return nil, err
	}
	files = eventlog.FilterByDateRange(eventlog.ForProcess(files, p), start.In(s.loc), end.In(s.loc))

	var (
		mu  sync.Mutex
		all []model.Session
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.LoadWorkers))
	for _, f := range files {
		if f.Size == 0 {
			continue
		}
		g.Go(func() error {
			got := s.loadFile(gctx, f)
			mu.Lock()
			all = append(all, got...)
			mu.Unlock()
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all = s.clean(all)
	session.SortByStart(all)
	return all, nil
}

// loadFile reads one file through the file cache. f is the discovery stat,
// taken before the read, so the entry never claims newer content than it holds.
func (s *Service) loadFile(ctx context.Context, f model.FileStat) []model.Session {
	path := f.Path
	if cached, ok := s.files.Get(ctx, path); ok {
		return cached
	}
	events, err := s.reader.ReadRawEvents(ctx, path)
	if err != nil {
		s.logger.Warn(ctx, "event log unreadable, skipping", logger.String("file", path), logger.Error(err))
		return nil
	}
	sessions := s.recon.Reconstruct(ctx, events)
	if err := s.files.Put(ctx, f, sessions); err != nil {
		s.logger.Warn(ctx, "file cache write failed", logger.String("file", path), logger.Error(err))
	}
	return sessions
}

// clean applies worker-name corrections and drops configured test workers.
func (s *Service) clean(in []model.Session) []model.Session {
	if len(s.corrections) == 0 && len(s.testWorkers) == 0 {
		return in
	}
	out := in[:0]
	for _, sess := range in {
		if fixed, ok := s.corrections[sess.WorkerID]; ok {
			sess.WorkerID = fixed
		}
		if _, ok := s.testWorkers[sess.WorkerID]; ok {
			continue
		}
		out = append(out, sess)
	}
	return out
}
