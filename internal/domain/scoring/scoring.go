// Package scoring normalizes worker aggregates against each other and combines
// them into a relative overall score.
package scoring

import (
	"math"
	"sort"

	"github.com/okian/linepulse/internal/domain/model"
)

// Default scoring configuration constants.
const (
	neutralScore  = 0.5
	maxScoreValue = 100
)

// Metric is one radar axis.
type Metric struct {
	Name           string  `json:"name"`
	Field          string  `json:"field"`
	HigherIsBetter bool    `json:"higher_is_better"`
	Weight         float64 `json:"weight"`
}

// MetricSet is an ordered list of metrics.
type MetricSet []Metric

// NormalizedRow is one worker's normalized metric values, keyed by metric name.
type NormalizedRow struct {
	WorkerID       string             `json:"worker_id"`
	Values         map[string]float64 `json:"values"`
	DefectRateNorm float64            `json:"defect_rate_norm"`
	OverallScore   float64            `json:"overall_score"`
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMetricSets overrides metric sets per process key (A, B, C, all).
func WithMetricSets(sets map[string]MetricSet) Option {
	return func(e *Engine) {
		for k, set := range sets {
			if len(set) > 0 {
				e.sets[k] = append(MetricSet(nil), set...)
			}
		}
	}
}

// Engine scores worker sets with per-process metric sets.
type Engine struct {
	sets map[string]MetricSet
}

// NewEngine creates an Engine with DefaultMetricSets.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{sets: DefaultMetricSets()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MetricSet returns the set for a process, falling back to "all".
func (e *Engine) MetricSet(p model.Process) MetricSet {
	if set, ok := e.sets[p.Key()]; ok {
		return set
	}
	return e.sets[model.ProcessAll.Key()]
}

// Score normalizes every metric in set across perfs and returns each worker's
// overall score with the normalized table, ordered by worker.
func (e *Engine) Score(perfs map[string]model.WorkerPerformance, set MetricSet) (map[string]float64, []NormalizedRow) {
	scores := make(map[string]float64, len(perfs))
	if len(perfs) == 0 {
		return scores, []NormalizedRow{}
	}

	workers := make([]string, 0, len(perfs))
	for w := range perfs {
		workers = append(workers, w)
	}
	sort.Strings(workers)

	rows := make([]NormalizedRow, len(workers))
	for i, w := range workers {
		rows[i] = NormalizedRow{WorkerID: w, Values: make(map[string]float64, len(set))}
	}

	var totalWeight float64
	weighted := make([]float64, len(workers))
	for _, m := range set {
		norm := normalizeColumn(perfs, workers, m.Field, m.HigherIsBetter)
		for i := range rows {
			rows[i].Values[m.Name] = norm[i]
			weighted[i] += norm[i] * m.Weight
		}
		totalWeight += m.Weight
	}

	defectNorm := normalizeDefectRate(perfs, workers)
	for i, w := range workers {
		overall := 0.0
		if totalWeight > 0 {
			overall = clamp(weighted[i]/totalWeight*maxScoreValue, 0, maxScoreValue)
		}
		rows[i].OverallScore = overall
		rows[i].DefectRateNorm = defectNorm[i]
		scores[w] = overall
	}
	return scores, rows
}

// Apply returns a copy of perfs with OverallScore set.
func (e *Engine) Apply(perfs map[string]model.WorkerPerformance, set MetricSet) (map[string]model.WorkerPerformance, []NormalizedRow) {
	scores, rows := e.Score(perfs, set)
	out := make(map[string]model.WorkerPerformance, len(perfs))
	for w, p := range perfs {
		p.OverallScore = scores[w]
		out[w] = p
	}
	return out, rows
}

// normalizeColumn min-max scales one field. Workers missing the field take
// the mean of the others; a field missing everywhere or without variance is 0.5.
func normalizeColumn(perfs map[string]model.WorkerPerformance, workers []string, field string, higherIsBetter bool) []float64 {
	out := make([]float64, len(workers))
	values := make([]float64, len(workers))
	present := make([]bool, len(workers))
	var sum float64
	var n int
	for i, w := range workers {
		if v, ok := FieldValue(perfs[w], field); ok {
			values[i], present[i] = v, true
			sum += v
			n++
		}
	}
	if n == 0 {
		return fill(out, neutralScore)
	}
	fillValue := sum / float64(n)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range values {
		if !present[i] {
			values[i] = fillValue
		}
		lo = math.Min(lo, values[i])
		hi = math.Max(hi, values[i])
	}
	if hi == lo {
		return fill(out, neutralScore)
	}
	for i, v := range values {
		scaled := (v - lo) / (hi - lo)
		if !higherIsBetter {
			scaled = 1 - scaled
		}
		out[i] = scaled
	}
	return out
}

// normalizeDefectRate scales defect rate with higher treated as better, which
// is how inspection detection is read on the scatter view.
func normalizeDefectRate(perfs map[string]model.WorkerPerformance, workers []string) []float64 {
	out := make([]float64, len(workers))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, w := range workers {
		lo = math.Min(lo, perfs[w].DefectRate)
		hi = math.Max(hi, perfs[w].DefectRate)
	}
	if hi == lo || hi == 0 {
		return fill(out, neutralScore)
	}
	for i, w := range workers {
		out[i] = (perfs[w].DefectRate - lo) / (hi - lo)
	}
	return out
}

func fill(xs []float64, v float64) []float64 {
	for i := range xs {
		xs[i] = v
	}
	return xs
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
