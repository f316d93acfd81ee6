package scoring

import (
	"math"

	"github.com/okian/linepulse/internal/domain/model"
)

// Field names usable in a Metric.
const (
	FieldAvgWorkTime     = "avg_work_time"
	FieldAvgLatency      = "avg_latency"
	FieldAvgIdleTime     = "avg_idle_time"
	FieldWorkTimeStd     = "work_time_std"
	FieldTotalErrors     = "total_errors"
	FieldFirstPassYield  = "first_pass_yield"
	FieldSessionCount    = "session_count"
	FieldTotalUnits      = "total_units"
	FieldUnitsPerSession = "units_per_session"
	FieldDefectRate      = "defect_rate"
	FieldBestWorkTime    = "best_work_time"
)

// DefaultMetricSets returns the radar configuration per process key.
func DefaultMetricSets() map[string]MetricSet {
	speed := Metric{Name: "speed", Field: FieldAvgWorkTime, Weight: 1.0}
	readiness := Metric{Name: "readiness", Field: FieldAvgLatency, Weight: 1.0}
	fpy := Metric{Name: "first_pass_yield", Field: FieldFirstPassYield, HigherIsBetter: true, Weight: 0.7}
	stability := Metric{Name: "stability", Field: FieldWorkTimeStd, Weight: 1.0}

	inspReadiness, inspFPY, inspStability := readiness, fpy, stability
	inspReadiness.Weight = 0.8
	inspFPY.Weight = 1.2
	inspStability.Weight = 0.7

	generic := MetricSet{speed, readiness, fpy, stability}
	return map[string]MetricSet{
		model.ProcessPackaging.Key(): {
			speed, readiness, fpy,
			{Name: "units_per_session", Field: FieldUnitsPerSession, HigherIsBetter: true, Weight: 1.0},
		},
		model.ProcessInspection.Key(): {
			speed, inspReadiness, inspFPY, inspStability,
			{Name: "quality", Field: FieldDefectRate, Weight: 1.5},
		},
		model.ProcessTransfer.Key(): generic,
		model.ProcessAll.Key():      append(MetricSet(nil), generic...),
	}
}

// FieldValue reads a named numeric field. An unknown name, or a best time with
// no record, reports false.
func FieldValue(p model.WorkerPerformance, field string) (float64, bool) {
	switch field {
	case FieldAvgWorkTime:
		return p.AvgWorkTime, true
	case FieldAvgLatency:
		return p.AvgLatency, true
	case FieldAvgIdleTime:
		return p.AvgIdleTime, true
	case FieldWorkTimeStd:
		return p.WorkTimeStd, true
	case FieldTotalErrors:
		return float64(p.TotalErrors), true
	case FieldFirstPassYield:
		return p.FirstPassYield, true
	case FieldSessionCount:
		return float64(p.SessionCount), true
	case FieldTotalUnits:
		return float64(p.TotalUnits), true
	case FieldUnitsPerSession:
		return p.UnitsPerSession, true
	case FieldDefectRate:
		return p.DefectRate, true
	case FieldBestWorkTime:
		if math.IsInf(p.BestWorkTime, 0) || math.IsNaN(p.BestWorkTime) {
			return 0, false
		}
		return p.BestWorkTime, true
	default:
		return 0, false
	}
}
