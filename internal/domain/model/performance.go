package model

import (
	"encoding/json"
	"math"
	"time"
)

// WorkerPerformance is the per-worker aggregate over a session set.
type WorkerPerformance struct {
	WorkerID        string     `json:"worker_id"`
	AvgWorkTime     float64    `json:"avg_work_time"`
	AvgLatency      float64    `json:"avg_latency"`
	AvgIdleTime     float64    `json:"avg_idle_time"`
	WorkTimeStd     float64    `json:"work_time_std"`
	TotalErrors     int        `json:"total_errors"`
	FirstPassYield  float64    `json:"first_pass_yield"`
	SessionCount    int        `json:"session_count"`
	TotalUnits      int        `json:"total_units"`
	UnitsPerSession float64    `json:"units_per_session"`
	DefectRate      float64    `json:"defect_rate"`
	BestWorkTime    float64    `json:"best_work_time"` // +Inf when no record qualifies
	BestWorkDate    *time.Time `json:"best_work_date,omitempty"`
	OverallScore    float64    `json:"overall_score"`
}

// HasBestRecord reports whether BestWorkTime holds a real record.
func (p WorkerPerformance) HasBestRecord() bool {
	return !math.IsInf(p.BestWorkTime, 1) && p.BestWorkDate != nil
}

// MarshalJSON encodes an absent best record as null; JSON has no +Inf.
func (p WorkerPerformance) MarshalJSON() ([]byte, error) {
	type plain WorkerPerformance
	out := struct {
		plain
		BestWorkTime *float64 `json:"best_work_time"`
	}{plain: plain(p)}
	if p.HasBestRecord() {
		v := p.BestWorkTime
		out.BestWorkTime = &v
	}
	return json.Marshal(out)
}

// KPI is the summary of one filtered session set.
type KPI struct {
	TotalSessions      int     `json:"total_sessions"`
	TotalUnits         int     `json:"total_units"`
	AvgUnitsPerSession float64 `json:"avg_units_per_session"`
	AvgWorkDuration    float64 `json:"avg_work_duration"`
	TotalErrors        int     `json:"total_errors"`
	WeeklyAvgErrors    float64 `json:"weekly_avg_errors"`
	AvgYield           float64 `json:"avg_yield"`
	AvgLatency         float64 `json:"avg_latency"`
	AvgDefectRate      float64 `json:"avg_defect_rate"`
}
