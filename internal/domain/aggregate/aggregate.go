// Package aggregate reduces session sets into per-worker performance, best
// records and KPI summaries. Every function here is a pure reduction over its
// arguments.
package aggregate

import (
	"math"
	"time"

	"github.com/okian/linepulse/internal/domain/model"
)

// MaxPlausibleLatency caps which latencies count toward latency means. Longer
// gaps stay on the session record.
const MaxPlausibleLatency = 3600.0

// Aggregate groups sessions by worker. history is the caller's unfiltered
// session history used for best records; now fixes "today".
func Aggregate(sessions, history []model.Session, now time.Time) map[string]model.WorkerPerformance {
	return AggregateWithPolicy(sessions, history, now, DefaultBestRecordPolicy())
}

// AggregateWithPolicy is Aggregate with explicit best-record constants.
func AggregateWithPolicy(sessions, history []model.Session, now time.Time, policy BestRecordPolicy) map[string]model.WorkerPerformance {
	out := make(map[string]model.WorkerPerformance)
	if len(sessions) == 0 {
		return out
	}

	tracksDefects := containsDefectTracking(sessions)
	byWorker := groupByWorker(sessions)
	historyByWorker := groupByWorker(history)

	for worker, group := range byWorker {
		p := reduceWorker(worker, group, tracksDefects)
		p.BestWorkTime, p.BestWorkDate = policy.BestRecord(historyByWorker[worker], now)
		out[worker] = p
	}
	return out
}

func reduceWorker(worker string, group []model.Session, tracksDefects bool) model.WorkerPerformance {
	var (
		work      = make([]float64, 0, len(group))
		latencies = make([]float64, 0, len(group))
		idle      float64
		errs      int
		errored   int
		units     int
		defects   int
	)
	for _, s := range group {
		work = append(work, s.WorkDurationSeconds)
		if s.LatencySeconds <= MaxPlausibleLatency {
			latencies = append(latencies, s.LatencySeconds)
		}
		idle += s.IdleSeconds
		errs += s.ErrorCount
		if s.HadError {
			errored++
		}
		units += s.UnitsCompleted
		defects += s.DefectCount
	}

	n := len(group)
	p := model.WorkerPerformance{
		WorkerID:       worker,
		AvgWorkTime:    mean(work),
		WorkTimeStd:    sampleStd(work),
		AvgLatency:     mean(latencies),
		AvgIdleTime:    idle / float64(n),
		TotalErrors:    errs,
		FirstPassYield: 1 - float64(errored)/float64(n),
		SessionCount:   n,
		TotalUnits:     units,
		BestWorkTime:   math.Inf(1),
	}
	p.UnitsPerSession = float64(units) / float64(n)
	if tracksDefects && units > 0 {
		p.DefectRate = float64(defects) / float64(units)
	}
	return p
}

func containsDefectTracking(sessions []model.Session) bool {
	for _, s := range sessions {
		if s.Process.TracksDefects() {
			return true
		}
	}
	return false
}

func groupByWorker(sessions []model.Session) map[string][]model.Session {
	out := make(map[string][]model.Session)
	for _, s := range sessions {
		out[s.WorkerID] = append(out[s.WorkerID], s)
	}
	return out
}

// mean returns 0 for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the n-1 standard deviation; 0 below two samples.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
