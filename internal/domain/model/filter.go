package model

import (
	"fmt"
	"slices"
	"time"
)

// Filter is a presentation-layer request over sessions. Dates are calendar days;
// both ends are inclusive.
type Filter struct {
	Process   Process
	StartDate time.Time
	EndDate   time.Time
	WorkerIDs []string

	// ShippingStart and ShippingEnd bound Session.ShippingDate when both are
	// set. A single bound is ignored.
	ShippingStart *time.Time
	ShippingEnd   *time.Time
}

// Validate checks that the window is well formed.
func (f Filter) Validate() error {
	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidFilter)
	}
	if Day(f.EndDate).Before(Day(f.StartDate)) {
		return fmt.Errorf("%w: end date %s is before start date %s",
			ErrInvalidFilter, f.EndDate.Format(time.DateOnly), f.StartDate.Format(time.DateOnly))
	}
	if f.ShippingStart != nil && f.ShippingEnd != nil && f.ShippingEnd.Before(*f.ShippingStart) {
		return fmt.Errorf("%w: shipping window is inverted", ErrInvalidFilter)
	}
	return nil
}

// Workers returns a sorted copy of WorkerIDs.
func (f Filter) Workers() []string {
	out := slices.Clone(f.WorkerIDs)
	slices.Sort(out)
	return slices.Compact(out)
}
