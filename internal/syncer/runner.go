package syncer

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/linepulse/internal/domain/model"
	"github.com/okian/linepulse/pkg/logger"
	"github.com/okian/linepulse/pkg/metrics"
)

// Pass triggers.
const (
	TriggerManual   = "manual"
	TriggerStartup  = "startup"
	TriggerWatch    = "watch"
	TriggerInterval = "interval"
)

// DiscoverFunc lists the candidate files of a pass.
type DiscoverFunc func(ctx context.Context) ([]model.FileStat, error)

// EventReader reads the raw events of one file.
type EventReader interface {
	ReadRawEvents(ctx context.Context, path string) ([]model.RawEvent, error)
}

// SessionBuilder turns raw events into sessions.
type SessionBuilder interface {
	Reconstruct(ctx context.Context, events []model.RawEvent) []model.Session
}

// SessionSink stores the sessions of one file under the stat taken before
// the file was read.
type SessionSink interface {
	Put(ctx context.Context, stat model.FileStat, sessions []model.Session) error
}

// FileFailure is one file a pass could not ingest.
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Report summarizes one sync pass.
type Report struct {
	RunID     string        `json:"run_id"`
	Trigger   string        `json:"trigger"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Scanned   int           `json:"scanned"`
	Pending   int           `json:"pending"`
	Synced    int           `json:"synced"`
	Failed    int           `json:"failed"`
	Rows      int           `json:"rows"`
	Failures  []FileFailure `json:"failures,omitempty"`
}

// Runner executes sync passes. Only one pass runs at a time.
type Runner struct {
	ctrl     *Controller
	discover DiscoverFunc
	reader   EventReader
	builder  SessionBuilder
	sink     SessionSink
	workers  int
	log      logger.Logger

	running atomic.Bool
	last    atomic.Pointer[Report]
}

// NewRunner wires a Runner.
func NewRunner(ctrl *Controller, discover DiscoverFunc, reader EventReader, builder SessionBuilder, sink SessionSink, opts ...RunnerOption) *Runner {
	r := &Runner{
		ctrl:     ctrl,
		discover: discover,
		reader:   reader,
		builder:  builder,
		sink:     sink,
		workers:  runtime.NumCPU(),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce runs a manually triggered pass.
func (r *Runner) RunOnce(ctx context.Context) (Report, error) {
	return r.Run(ctx, TriggerManual)
}

// LastReport returns the most recent completed pass, if any.
func (r *Runner) LastReport() (Report, bool) {
	p := r.last.Load()
	if p == nil {
		return Report{}, false
	}
	return *p, true
}

// Run discovers files, ingests the ones needing sync concurrently and records
// the outcome per file. A failing file never stops the others.
func (r *Runner) Run(ctx context.Context, trigger string) (Report, error) {
	if !r.running.CompareAndSwap(false, true) {
		return Report{}, ErrSyncInProgress
	}
	defer r.running.Store(false)

	rep := Report{RunID: uuid.NewString(), Trigger: trigger, StartedAt: time.Now()}
	metrics.RecordSyncPass(trigger)
	defer func() {
		metrics.RecordSyncPassDuration(float64(time.Since(rep.StartedAt).Milliseconds()), time.Now().Unix())
	}()

	files, err := r.discover(ctx)
	if err != nil {
		return rep, fmt.Errorf("%w: discover: %w", ErrSyncFailed, err)
	}
	rep.Scanned = len(files)

	pending, err := r.ctrl.FilesNeedingSync(ctx, files)
	if err != nil {
		return rep, err
	}
	rep.Pending = len(pending)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, f := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, ferr := r.ingest(gctx, f)
			mu.Lock()
			defer mu.Unlock()
			if ferr != nil {
				rep.Failed++
				rep.Failures = append(rep.Failures, FileFailure{Path: f.Path, Error: ferr.Error()})
				metrics.RecordSyncFile(string(model.SyncFailed))
				r.log.Warn(gctx, "file sync failed", logger.String("file", f.Path), logger.Error(ferr))
				if err := r.ctrl.MarkFailed(gctx, f, ferr); err != nil {
					r.log.Error(gctx, "recording sync failure", logger.String("file", f.Path), logger.Error(err))
				}
				return nil
			}
			rep.Synced++
			rep.Rows += rows
			metrics.RecordSyncFile(string(model.SyncSuccess))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}

	if recs, err := r.ctrl.Records(ctx); err == nil {
		metrics.UpdateTrackedFiles(len(recs))
	}
	rep.Duration = time.Since(rep.StartedAt)
	done := rep
	r.last.Store(&done)
	r.log.Info(ctx, "sync pass finished",
		logger.String("run_id", rep.RunID),
		logger.String("trigger", trigger),
		logger.Int("scanned", rep.Scanned),
		logger.Int("synced", rep.Synced),
		logger.Int("failed", rep.Failed),
		logger.Duration("took", rep.Duration))
	return rep, nil
}

func (r *Runner) ingest(ctx context.Context, f model.FileStat) (int, error) {
	events, err := r.reader.ReadRawEvents(ctx, f.Path)
	if err != nil {
		return 0, err
	}
	sessions := r.builder.Reconstruct(ctx, events)
	if err := r.sink.Put(ctx, f, sessions); err != nil {
		return 0, fmt.Errorf("cache sessions: %w", err)
	}
	if err := r.ctrl.MarkSynced(ctx, f, len(events)); err != nil {
		return 0, fmt.Errorf("record sync: %w", err)
	}
	return len(events), nil
}
