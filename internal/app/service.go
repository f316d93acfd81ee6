// Package service assembles the analysis pipeline: log discovery, file and
// session caching, session reconstruction, aggregation, scoring and
// incremental sync.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/linepulse/internal/adapters/cache/filecache"
	"github.com/okian/linepulse/internal/adapters/cache/sessioncache"
	"github.com/okian/linepulse/internal/adapters/eventlog"
	"github.com/okian/linepulse/internal/adapters/repository"
	"github.com/okian/linepulse/internal/config"
	"github.com/okian/linepulse/internal/domain/model"
	"github.com/okian/linepulse/internal/domain/scoring"
	"github.com/okian/linepulse/internal/domain/session"
	"github.com/okian/linepulse/internal/syncer"
	"github.com/okian/linepulse/pkg/logger"
)

// historyDays is the look-back window loaded for best-record baselines.
const historyDays = 7

// Service implements the dependencies of the HTTP API and CLI.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components
	patterns eventlog.Patterns
	reader   *eventlog.Reader
	recon    *session.Reconstructor
	files    *filecache.Cache
	sessions sessioncache.Store
	records  repository.Store
	ctrl     *syncer.Controller
	runner   *syncer.Runner
	engine   *scoring.Engine

	// Load-time worker hygiene
	corrections map[string]string
	testWorkers map[string]struct{}

	now func() time.Time
	loc *time.Location

	// State
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock fixes "now" for best-record windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone used for naive log timestamps and calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithSessionStore replaces the configured session cache backend.
func WithSessionStore(store sessioncache.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.sessions = store
		}
	}
}

// WithSyncStore replaces the configured sync record store.
func WithSyncStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.records = store
		}
	}
}

// New builds a Service from cfg. Options override configured components.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{
		cfg:    cfg,
		now:    time.Now,
		loc:    time.Local,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	patterns, err := eventlog.ParsePatterns(cfg.FilePatterns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	s.patterns = patterns
	s.reader = eventlog.NewReader(
		eventlog.WithPatterns(patterns),
		eventlog.WithLocation(s.loc),
		eventlog.WithLogger(s.logger.Named("eventlog")),
	)
	s.recon = session.NewReconstructor(
		session.WithLogger(s.logger.Named("session")),
		session.WithCompletionKind(cfg.CompletionEvent),
		session.WithPackagingUnits(cfg.PackagingUnits),
	)
	s.engine = scoring.NewEngine(scoring.WithMetricSets(metricSets(cfg.MetricSets)))
	s.corrections = cfg.WorkerCorrections
	s.testWorkers = make(map[string]struct{}, len(cfg.TestWorkers))
	for _, w := range cfg.TestWorkers {
		s.testWorkers[w] = struct{}{}
	}

	s.files, err = filecache.New(cfg.CacheDir,
		filecache.WithTTL(cfg.FileCacheTTL),
		filecache.WithLogger(s.logger.Named("filecache")))
	if err != nil {
		return nil, err
	}
	if s.sessions == nil {
		if s.sessions, err = s.openSessionStore(ctx); err != nil {
			_ = s.files.Close()
			return nil, err
		}
	}
	if s.records == nil {
		if s.records, err = s.openSyncStore(ctx); err != nil {
			_ = s.files.Close()
			return nil, err
		}
	}

	s.ctrl = syncer.NewController(s.records, syncer.WithClock(s.now))
	s.runner = syncer.NewRunner(s.ctrl, s.discover, s.reader, s.recon, s.files,
		syncer.WithWorkers(cfg.SyncWorkers),
		syncer.WithRunnerLogger(s.logger.Named("syncer")))
	return s, nil
}

func (s *Service) openSessionStore(ctx context.Context) (sessioncache.Store, error) {
	if s.cfg.SessionCacheBackend == "redis" {
		r, err := sessioncache.DialRedis(ctx, s.cfg.RedisAddr, s.cfg.SessionCacheTTL, s.logger.Named("sessioncache"))
		if err == nil {
			return r, nil
		}
		s.logger.Warn(ctx, "redis session cache unavailable, using memory", logger.Error(err))
	}
	return sessioncache.NewMemory(sessioncache.WithMemoryTTL(s.cfg.SessionCacheTTL), sessioncache.WithMemoryClock(s.now))
}

func (s *Service) openSyncStore(ctx context.Context) (repository.Store, error) {
	if s.cfg.DBPath == "" {
		return repository.NewMemorySyncStore(), nil
	}
	return repository.NewSQLiteSyncStore(ctx, s.cfg.DBPath, repository.WithLogger(s.logger.Named("repository")))
}

func metricSets(in map[string][]config.MetricConfig) map[string]scoring.MetricSet {
	out := make(map[string]scoring.MetricSet, len(in))
	for key, ms := range in {
		set := make(scoring.MetricSet, 0, len(ms))
		for _, m := range ms {
			set = append(set, scoring.Metric{Name: m.Name, Field: m.Field, HigherIsBetter: m.HigherIsBetter, Weight: m.Weight})
		}
		out[key] = set
	}
	return out
}

func (s *Service) discover(_ context.Context) ([]model.FileStat, error) {
	return eventlog.Discover(s.cfg.LogDir, s.patterns)
}

// Sync runs one incremental sync pass.
func (s *Service) Sync(ctx context.Context) (syncer.Report, error) {
	return s.syncWith(ctx, syncer.TriggerManual)
}

func (s *Service) syncWith(ctx context.Context, trigger string) (syncer.Report, error) {
	rep, err := s.runner.Run(ctx, trigger)
	if err == nil && rep.Synced > 0 {
		// Filtered sets may now be stale; memory entries are cheap to rebuild.
		if p, ok := s.sessions.(interface{ Purge() }); ok {
			p.Purge()
		}
	}
	return rep, err
}

// Watch runs a startup pass, then sync passes on file changes and on the
// configured interval until ctx is done.
func (s *Service) Watch(ctx context.Context) error {
	trigger := func(ctx context.Context, trig string) {
		if _, err := s.syncWith(ctx, trig); err != nil && !errors.Is(err, syncer.ErrSyncInProgress) && ctx.Err() == nil {
			s.logger.Warn(ctx, "sync pass failed", logger.String("trigger", trig), logger.Error(err))
		}
	}
	trigger(ctx, syncer.TriggerStartup)

	w := syncer.NewWatcher(s.cfg.LogDir, trigger,
		syncer.WithDebounce(s.cfg.SyncDebounce),
		syncer.WithInterval(s.cfg.SyncInterval),
		syncer.WithFileFilter(func(name string) bool {
			_, ok := s.patterns.Match(name)
			return ok
		}),
		syncer.WithWatcherLogger(s.logger.Named("watcher")))
	return w.Run(ctx)
}

// Start launches Watch in the background.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true

	go func() {
		defer close(s.done)
		if err := s.Watch(ctx); err != nil {
			s.logger.Error(ctx, "watcher stopped", logger.Error(err))
		}
	}()
	s.logger.Info(ctx, "analysis service started", logger.String("log_dir", s.cfg.LogDir))
	return nil
}

// Stop halts background syncing and waits for the current pass to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	<-s.done
	s.started = false
	s.logger.Info(context.Background(), "analysis service stopped")
}

// Close stops the service and releases its stores.
func (s *Service) Close() error {
	s.Stop()
	var errs []error
	if c, ok := s.sessions.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, s.records.Close(), s.files.Close())
	return errors.Join(errs...)
}

// PruneCache removes expired file cache entries and sweeps the session cache.
func (s *Service) PruneCache(ctx context.Context) (int, error) {
	if m, ok := s.sessions.(*sessioncache.Memory); ok {
		m.Sweep()
	}
	return s.files.Prune(ctx)
}

// SyncRecords lists every tracked file.
func (s *Service) SyncRecords(ctx context.Context) ([]model.SyncRecord, error) {
	return s.ctrl.Records(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":               s.started,
		"log_dir":               s.cfg.LogDir,
		"cache_dir":             s.files.Dir(),
		"session_cache_backend": sessionBackend(s.sessions),
	}
	if m, ok := s.sessions.(*sessioncache.Memory); ok {
		stats["session_cache_items"] = m.Len()
	}
	if rep, ok := s.runner.LastReport(); ok {
		stats["last_sync"] = rep
	}
	return stats
}

func sessionBackend(store sessioncache.Store) string {
	switch store.(type) {
	case *sessioncache.Memory:
		return "memory"
	case *sessioncache.Redis:
		return "redis"
	default:
		return "custom"
	}
}
