package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/okian/linepulse/internal/domain/model"
)

// Shift hours reported by the floor production board, both inclusive.
const (
	FirstShiftHour = 6
	LastShiftHour  = 22
)

// WorkerUnits is one worker's output over a session set.
type WorkerUnits struct {
	WorkerID     string  `json:"worker_id"`
	Units        int     `json:"units_completed"`
	AvgWorkTime  float64 `json:"avg_work_time"`
	SessionCount int     `json:"session_count"`
}

// ItemUnits is one item's output over a session set.
type ItemUnits struct {
	Item         string `json:"item"`
	ItemCode     string `json:"item_code"`
	ItemName     string `json:"item_name"`
	Units        int    `json:"units_completed"`
	SessionCount int    `json:"session_count"`
}

// HourlyUnits is the output started in one clock hour.
type HourlyUnits struct {
	Hour  int     `json:"hour"`
	Units float64 `json:"units"`
}

// DailyUnits is one calendar day of a session set.
type DailyUnits struct {
	Date         string  `json:"date"`
	Units        int     `json:"units_completed"`
	AvgWorkTime  float64 `json:"avg_work_time"`
	AvgLatency   float64 `json:"avg_latency"`
	SessionCount int     `json:"session_count"`
}

// DailyAverages are per-day means over the distinct days of a session set.
type DailyAverages struct {
	Days        int           `json:"days"`
	Units       float64       `json:"daily_units"`
	Sessions    float64       `json:"daily_sessions"`
	Workers     float64       `json:"daily_workers"`
	AvgWorkTime float64       `json:"daily_avg_work_time"`
	Hourly      []HourlyUnits `json:"hourly"`
}

// WorkerSummary condenses one worker's sessions.
type WorkerSummary struct {
	TotalUnits     int     `json:"total_units"`
	TotalSessions  int     `json:"total_sessions"`
	Days           int     `json:"days"`
	AvgDailyUnits  float64 `json:"avg_daily_units"`
	AvgWorkTime    float64 `json:"avg_work_time"`
	AvgLatency     float64 `json:"avg_latency"`
	FirstPassYield float64 `json:"first_pass_yield"`
}

// ExcludeEmptyPackaging drops packaging sessions with no work time and no item
// code. The collector writes those when a tray is opened and abandoned.
func ExcludeEmptyPackaging(sessions []model.Session) []model.Session {
	out := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Process == model.ProcessPackaging && s.WorkDurationSeconds == 0 && s.ItemCode == model.NotAvailable {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Producing keeps the workers that completed at least one unit.
func Producing(perfs map[string]model.WorkerPerformance) map[string]model.WorkerPerformance {
	out := make(map[string]model.WorkerPerformance, len(perfs))
	for id, p := range perfs {
		if p.TotalUnits > 0 {
			out[id] = p
		}
	}
	return out
}

// LatestDay returns the most recent session date.
func LatestDay(sessions []model.Session) (time.Time, bool) {
	if len(sessions) == 0 {
		return time.Time{}, false
	}
	latest := sessions[0].Date
	for _, s := range sessions[1:] {
		if s.Date.After(latest) {
			latest = s.Date
		}
	}
	return latest, true
}

// OnDay keeps the sessions whose date falls on day's calendar date.
func OnDay(sessions []model.Session, day time.Time) []model.Session {
	return Filter(sessions, model.Filter{StartDate: day, EndDate: day})
}

// ByWorker totals units per worker, most productive first. Workers without
// output are left out.
func ByWorker(sessions []model.Session) []WorkerUnits {
	out := make([]WorkerUnits, 0)
	for worker, group := range groupByWorker(sessions) {
		w := WorkerUnits{WorkerID: worker, SessionCount: len(group)}
		var work float64
		for _, s := range group {
			w.Units += s.UnitsCompleted
			work += s.WorkDurationSeconds
		}
		if w.Units == 0 {
			continue
		}
		w.AvgWorkTime = work / float64(len(group))
		out = append(out, w)
	}
	slices.SortFunc(out, func(a, b WorkerUnits) int {
		return cmp.Or(cmp.Compare(b.Units, a.Units), cmp.Compare(a.WorkerID, b.WorkerID))
	})
	return out
}

// ByItem totals units per item, highest first. Items without output are left out.
func ByItem(sessions []model.Session) []ItemUnits {
	idx := make(map[string]int)
	out := make([]ItemUnits, 0)
	for _, s := range sessions {
		key := s.ItemDisplay()
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, ItemUnits{Item: key, ItemCode: s.ItemCode, ItemName: s.ItemName})
		}
		out[i].Units += s.UnitsCompleted
		out[i].SessionCount++
	}
	out = slices.DeleteFunc(out, func(it ItemUnits) bool { return it.Units == 0 })
	slices.SortFunc(out, func(a, b ItemUnits) int {
		return cmp.Or(cmp.Compare(b.Units, a.Units), cmp.Compare(a.Item, b.Item))
	})
	return out
}

// Hourly totals units by the clock hour of each session's start, for every
// hour in [from, to]. Hours without sessions report zero.
func Hourly(sessions []model.Session, from, to int) []HourlyUnits {
	return hourly(sessions, from, to, 1)
}

// HourlyAverage is Hourly divided by the number of distinct session days.
func HourlyAverage(sessions []model.Session, from, to int) []HourlyUnits {
	return hourly(sessions, from, to, len(distinctDays(sessions)))
}

func hourly(sessions []model.Session, from, to, divisor int) []HourlyUnits {
	if to < from {
		return []HourlyUnits{}
	}
	sums := make([]int, to-from+1)
	for _, s := range sessions {
		if h := s.StartTime.Hour(); h >= from && h <= to {
			sums[h-from] += s.UnitsCompleted
		}
	}
	out := make([]HourlyUnits, len(sums))
	for i, u := range sums {
		out[i] = HourlyUnits{Hour: from + i}
		if divisor > 0 {
			out[i].Units = float64(u) / float64(divisor)
		}
	}
	return out
}

// Daily reduces sessions per calendar day in date order.
func Daily(sessions []model.Session) []DailyUnits {
	days := distinctDays(sessions)
	out := make([]DailyUnits, 0, len(days))
	for _, key := range sortedKeys(days) {
		group := days[key]
		d := DailyUnits{Date: key, SessionCount: len(group)}
		var work float64
		latencies := make([]float64, 0, len(group))
		for _, s := range group {
			d.Units += s.UnitsCompleted
			work += s.WorkDurationSeconds
			if s.LatencySeconds <= MaxPlausibleLatency {
				latencies = append(latencies, s.LatencySeconds)
			}
		}
		d.AvgWorkTime = work / float64(len(group))
		d.AvgLatency = mean(latencies)
		out = append(out, d)
	}
	return out
}

// Averages reduces sessions to per-day means: units, sessions, distinct
// workers and mean work time, plus the average shift-hour profile.
func Averages(sessions []model.Session) DailyAverages {
	days := distinctDays(sessions)
	avg := DailyAverages{Days: len(days), Hourly: HourlyAverage(sessions, FirstShiftHour, LastShiftHour)}
	if len(days) == 0 {
		return avg
	}
	for _, group := range days {
		workers := make(map[string]struct{})
		var units int
		var work float64
		for _, s := range group {
			units += s.UnitsCompleted
			work += s.WorkDurationSeconds
			workers[s.WorkerID] = struct{}{}
		}
		avg.Units += float64(units)
		avg.Sessions += float64(len(group))
		avg.Workers += float64(len(workers))
		avg.AvgWorkTime += work / float64(len(group))
	}
	n := float64(len(days))
	avg.Units /= n
	avg.Sessions /= n
	avg.Workers /= n
	avg.AvgWorkTime /= n
	return avg
}

// Summarize condenses one worker's sessions. First-pass yield counts sessions
// without an error flag.
func Summarize(sessions []model.Session) WorkerSummary {
	if len(sessions) == 0 {
		return WorkerSummary{}
	}
	var (
		sum       WorkerSummary
		work      float64
		latencies = make([]float64, 0, len(sessions))
		clean     int
	)
	for _, s := range sessions {
		sum.TotalUnits += s.UnitsCompleted
		work += s.WorkDurationSeconds
		if s.LatencySeconds <= MaxPlausibleLatency {
			latencies = append(latencies, s.LatencySeconds)
		}
		if !s.HadError {
			clean++
		}
	}
	n := len(sessions)
	sum.TotalSessions = n
	sum.Days = len(distinctDays(sessions))
	sum.AvgDailyUnits = float64(sum.TotalUnits) / float64(sum.Days)
	sum.AvgWorkTime = work / float64(n)
	sum.AvgLatency = mean(latencies)
	sum.FirstPassYield = float64(clean) / float64(n)
	return sum
}

// distinctDays groups sessions by calendar date, keyed YYYY-MM-DD.
func distinctDays(sessions []model.Session) map[string][]model.Session {
	out := make(map[string][]model.Session)
	for _, s := range sessions {
		key := s.Date.Format(time.DateOnly)
		out[key] = append(out[key], s)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
