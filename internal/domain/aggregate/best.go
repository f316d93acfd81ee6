package aggregate

import (
	"math"
	"time"

	"github.com/okian/linepulse/internal/domain/model"
)

// BestRecordPolicy holds the constants of the best-record rule.
type BestRecordPolicy struct {
	// MinRealisticSeconds is the floor under which a session is treated as a glitch.
	MinRealisticSeconds float64
	// ThresholdRatio of the trailing baseline below which a session is implausible.
	ThresholdRatio float64
	// BaselineDays is the trailing window, inclusive of today.
	BaselineDays int
	// TargetUnits is the exact unit count a candidate must complete.
	TargetUnits int
}

// DefaultBestRecordPolicy returns the production constants.
func DefaultBestRecordPolicy() BestRecordPolicy {
	return BestRecordPolicy{
		MinRealisticSeconds: 180,
		ThresholdRatio:      0.6,
		BaselineDays:        7,
		TargetUnits:         60,
	}
}

// BestRecord applies the default policy.
func BestRecord(history []model.Session, now time.Time) (float64, *time.Time) {
	return DefaultBestRecordPolicy().BestRecord(history, now)
}

// BestRecord returns the fastest plausible clean session of the current week
// from one worker's history, or (+Inf, nil).
func (p BestRecordPolicy) BestRecord(history []model.Session, now time.Time) (float64, *time.Time) {
	best, bestDate := math.Inf(1), (*time.Time)(nil)
	if len(history) == 0 {
		return best, bestDate
	}

	today := model.Day(now)
	threshold := p.Threshold(p.Baseline(history, now))
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))

	for _, s := range history {
		d := calendarDay(s.Date, now.Location())
		if d.Before(monday) || d.After(today) {
			continue
		}
		if !s.Clean() || s.UnitsCompleted != p.TargetUnits || s.WorkDurationSeconds < threshold {
			continue
		}
		if s.WorkDurationSeconds < best {
			best = s.WorkDurationSeconds
			date := d
			bestDate = &date
		}
	}
	return best, bestDate
}

// Baseline is the mean work duration of clean sessions dated within the
// trailing window, or +Inf when there are none.
func (p BestRecordPolicy) Baseline(history []model.Session, now time.Time) float64 {
	today := model.Day(now)
	from := today.AddDate(0, 0, -p.BaselineDays)
	var sum float64
	var n int
	for _, s := range history {
		d := calendarDay(s.Date, now.Location())
		if d.Before(from) || d.After(today) || !s.Clean() {
			continue
		}
		sum += s.WorkDurationSeconds
		n++
	}
	if n == 0 {
		return math.Inf(1)
	}
	return sum / float64(n)
}

// Threshold is max(baseline*ratio, floor), or the floor for an infinite baseline.
func (p BestRecordPolicy) Threshold(baseline float64) float64 {
	if math.IsInf(baseline, 1) || math.IsNaN(baseline) {
		return p.MinRealisticSeconds
	}
	return math.Max(baseline*p.ThresholdRatio, p.MinRealisticSeconds)
}

// calendarDay re-anchors t's calendar date at midnight in loc.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
