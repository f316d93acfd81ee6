package model

import (
	"fmt"
	"time"
)

// NotAvailable fills text attributes the collector left out.
const NotAvailable = "N/A"

// Session is one completed unit of work by one worker.
type Session struct {
	Date                time.Time  `json:"date"` // calendar day of StartTime
	StartTime           time.Time  `json:"start_time"`
	EndTime             time.Time  `json:"end_time"` // timestamp of the completion event
	WorkerID            string     `json:"worker_id"`
	Process             Process    `json:"process"`
	ItemCode            string     `json:"item_code"`
	ItemName            string     `json:"item_name"`
	WorkDurationSeconds float64    `json:"work_duration_seconds"`
	LatencySeconds      float64    `json:"latency_seconds"`
	IdleSeconds         float64    `json:"idle_seconds"`
	ErrorCount          int        `json:"error_count"`
	HadError            bool       `json:"had_error"`
	IsPartial           bool       `json:"is_partial"`
	IsRestored          bool       `json:"is_restored"`
	IsTest              bool       `json:"is_test"`
	UnitsCompleted      int        `json:"units_completed"`
	DefectCount         int        `json:"defect_count"`
	ShippingDate        *time.Time `json:"shipping_date,omitempty"`
	WorkOrderID         string     `json:"work_order_id"`
	Phase               string     `json:"phase"`
	SupplierCode        string     `json:"supplier_code"`
	ProductBatch        string     `json:"product_batch"`
	ItemGroup           string     `json:"item_group"`
	SourceFile          string     `json:"source_file,omitempty"`
}

// Clean reports whether the session produced units without any error, partial
// submission, restore or test flag.
func (s Session) Clean() bool {
	return s.UnitsCompleted > 0 && !s.HadError && !s.IsPartial && !s.IsRestored && !s.IsTest
}

// ItemDisplay renders "<item_name> (<item_code>)".
func (s Session) ItemDisplay() string {
	return fmt.Sprintf("%s (%s)", s.ItemName, s.ItemCode)
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
