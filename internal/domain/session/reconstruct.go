// Package session rebuilds completed work sessions from raw collector events.
package session

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/okian/linepulse/internal/domain/model"
	"github.com/okian/linepulse/internal/domain/normalize"
	"github.com/okian/linepulse/internal/timeparse"
	"github.com/okian/linepulse/pkg/logger"
	"github.com/okian/linepulse/pkg/metrics"
)

const (
	// DefaultCompletionKind is the event kind the collector writes when a tray closes.
	DefaultCompletionKind = "TRAY_COMPLETE"
	// DefaultPackagingUnits is the tray size on the packaging line.
	DefaultPackagingUnits = 60
)

// Reconstructor turns completion events into sessions. It is stateless between
// calls and safe for concurrent use.
type Reconstructor struct {
	log            logger.Logger
	completionKind string
	packagingUnits int
}

// NewReconstructor creates a Reconstructor with defaults.
func NewReconstructor(opts ...Option) *Reconstructor {
	r := &Reconstructor{
		log:            logger.Nop(),
		completionKind: DefaultCompletionKind,
		packagingUnits: DefaultPackagingUnits,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type completion struct {
	ev    model.RawEvent
	attrs normalize.Attributes
	start time.Time
}

// Reconstruct returns one session per completion event with a parseable start
// time. Latency is measured per worker across every process and day in the
// batch. The result is sorted by worker then start time.
func (r *Reconstructor) Reconstruct(ctx context.Context, events []model.RawEvent) []model.Session {
	if len(events) == 0 {
		return []model.Session{}
	}
	began := time.Now()

	byWorker := make(map[string][]completion)
	skipped := 0
	for _, ev := range events {
		if ev.Kind != r.completionKind {
			continue
		}
		attrs := normalize.Normalize(ev.Details)
		start, err := timeparse.Parse(attrs.String(startTimeKeys, ""), ev.Timestamp.Location())
		if err != nil {
			skipped++
			metrics.RecordEventSkipped("missing_start_time")
			r.log.Debug(ctx, "completion event without parseable start_time",
				logger.String("worker", ev.WorkerID),
				logger.String("source", ev.SourceFile),
				logger.Any("timestamp", ev.Timestamp))
			continue
		}
		byWorker[ev.WorkerID] = append(byWorker[ev.WorkerID], completion{ev: ev, attrs: attrs, start: start})
	}

	workers := make([]string, 0, len(byWorker))
	for w := range byWorker {
		workers = append(workers, w)
	}
	slices.Sort(workers)

	out := make([]model.Session, 0, len(events))
	perProcess := map[model.Process]int{}
	for _, w := range workers {
		group := byWorker[w]
		slices.SortStableFunc(group, func(a, b completion) int {
			if c := a.start.Compare(b.start); c != 0 {
				return c
			}
			return a.ev.Timestamp.Compare(b.ev.Timestamp)
		})
		for i, c := range group {
			latency := 0.0
			if i > 0 {
				latency = max(0, c.start.Sub(group[i-1].ev.Timestamp).Seconds())
			}
			s := r.build(c, latency)
			perProcess[s.Process]++
			out = append(out, s)
		}
	}

	for p, n := range perProcess {
		metrics.RecordSessionsReconstructed(p.Key(), n)
	}
	metrics.RecordReconstructLatency(float64(time.Since(began).Microseconds()) / 1000)
	if skipped > 0 {
		r.log.Debug(ctx, "reconstruct skipped events", logger.Int("skipped", skipped), logger.Int("sessions", len(out)))
	}
	return out
}

func (r *Reconstructor) build(c completion, latency float64) model.Session {
	a := c.attrs
	s := model.Session{
		Date:                model.Day(c.start),
		StartTime:           c.start,
		EndTime:             c.ev.Timestamp,
		WorkerID:            c.ev.WorkerID,
		Process:             c.ev.Process,
		ItemCode:            a.String(itemCodeKeys, notAvailable),
		ItemName:            a.String(itemNameKeys, ""),
		WorkDurationSeconds: max(0, a.Float(workTimeKeys, 0)),
		LatencySeconds:      latency,
		IdleSeconds:         max(0, a.Float(idleTimeKeys, 0)),
		ErrorCount:          max(0, a.Int(errorCountKeys, 0)),
		HadError:            a.Bool(hadErrorKeys, false),
		IsPartial:           a.Bool(isPartialKeys, false),
		IsRestored:          a.Bool(isRestoredKeys, false),
		IsTest:              a.Bool(isTestKeys, false),
		UnitsCompleted:      r.units(c.ev.Process, a),
		DefectCount:         max(0, a.Int(defectCountKeys, 0)),
		WorkOrderID:         a.String(workOrderKeys, notAvailable),
		Phase:               a.String(phaseKeys, notAvailable),
		SupplierCode:        a.String(supplierKeys, notAvailable),
		ProductBatch:        a.String(batchKeys, notAvailable),
		ItemGroup:           a.String(itemGroupKeys, notAvailable),
		SourceFile:          c.ev.SourceFile,
	}
	if raw := a.String(shippingDateKeys, ""); raw != "" {
		if t, err := timeparse.Parse(raw, c.start.Location()); err == nil {
			s.ShippingDate = &t
		}
	}
	return s
}

func (r *Reconstructor) units(p model.Process, a normalize.Attributes) int {
	switch p {
	case model.ProcessPackaging:
		return r.packagingUnits
	case model.ProcessInspection:
		return max(0, a.Int(goodCountKeys, 0)) + max(0, a.Int(defectCountKeys, 0))
	case model.ProcessTransfer:
		return max(0, a.Int(scanCountKeys, 0))
	default:
		return 0
	}
}

// SortByStart orders sessions by start time, then worker.
func SortByStart(sessions []model.Session) {
	slices.SortStableFunc(sessions, func(a, b model.Session) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.WorkerID, b.WorkerID)
	})
}
