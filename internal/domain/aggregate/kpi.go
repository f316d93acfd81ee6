package aggregate

import (
	"time"

	"github.com/okian/linepulse/internal/domain/model"
)

// KPIs reduces an arbitrary session set. An empty set yields zero values.
func KPIs(sessions []model.Session) model.KPI {
	if len(sessions) == 0 {
		return model.KPI{}
	}

	var (
		k         model.KPI
		work      float64
		latSum    float64
		latN      int
		yieldN    int
		yieldErrs int
		defects   int
	)
	first, last := sessions[0].Date, sessions[0].Date
	for _, s := range sessions {
		k.TotalUnits += s.UnitsCompleted
		k.TotalErrors += s.ErrorCount
		work += s.WorkDurationSeconds
		defects += s.DefectCount
		if s.LatencySeconds <= MaxPlausibleLatency {
			latSum += s.LatencySeconds
			latN++
		}
		if !s.IsTest && !s.IsPartial && !s.IsRestored {
			yieldN++
			if s.HadError {
				yieldErrs++
			}
		}
		if s.Date.Before(first) {
			first = s.Date
		}
		if s.Date.After(last) {
			last = s.Date
		}
	}

	n := len(sessions)
	k.TotalSessions = n
	k.AvgUnitsPerSession = float64(k.TotalUnits) / float64(n)
	k.AvgWorkDuration = work / float64(n)
	k.AvgYield = 1
	if yieldN > 0 {
		k.AvgYield = 1 - float64(yieldErrs)/float64(yieldN)
	}
	if latN > 0 {
		k.AvgLatency = latSum / float64(latN)
	}

	days := daysBetween(first, last) + 1
	weeks := 1.0
	if days >= 7 {
		weeks = float64(days) / 7
	}
	k.WeeklyAvgErrors = float64(k.TotalErrors) / weeks

	if containsDefectTracking(sessions) && k.TotalUnits > 0 {
		k.AvgDefectRate = float64(defects) / float64(k.TotalUnits)
	}
	return k
}

// daysBetween counts calendar days from a to b, ignoring clock and DST shifts.
func daysBetween(a, b time.Time) int {
	ua := calendarDay(a, time.UTC)
	ub := calendarDay(b, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
