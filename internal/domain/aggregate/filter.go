package aggregate

import (
	"time"

	"github.com/okian/linepulse/internal/domain/model"
)

// Filter keeps sessions inside f's inclusive date window, process, worker set
// and optional shipping window. A zero-valued date bound is open. The shipping
// window applies only when both of its bounds are set.
func Filter(sessions []model.Session, f model.Filter) []model.Session {
	var workers map[string]struct{}
	if len(f.WorkerIDs) > 0 {
		workers = make(map[string]struct{}, len(f.WorkerIDs))
		for _, w := range f.WorkerIDs {
			workers[w] = struct{}{}
		}
	}

	out := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if f.Process != model.ProcessAll && s.Process != f.Process {
			continue
		}
		if !withinDays(s.Date, f.StartDate, f.EndDate) {
			continue
		}
		if workers != nil {
			if _, ok := workers[s.WorkerID]; !ok {
				continue
			}
		}
		if f.ShippingStart != nil && f.ShippingEnd != nil {
			if s.ShippingDate == nil {
				continue
			}
			if !withinDays(*s.ShippingDate, *f.ShippingStart, *f.ShippingEnd) {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// withinDays compares calendar dates only, so sessions and bounds may carry
// different clocks or locations.
func withinDays(t, from, to time.Time) bool {
	d := calendarDay(t, time.UTC)
	if !from.IsZero() && d.Before(calendarDay(from, time.UTC)) {
		return false
	}
	if !to.IsZero() && d.After(calendarDay(to, time.UTC)) {
		return false
	}
	return true
}
