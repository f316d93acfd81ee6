package session

import "github.com/okian/linepulse/internal/domain/model"

// Attribute names accepted for each session field, newest first. Older
// collector versions wrote the later names.
var ( //nolint:gochecknoglobals // static alias tables
	startTimeKeys    = []string{"start_time"}
	itemCodeKeys     = []string{"CLC", "item_code"}
	itemNameKeys     = []string{"item_name"}
	workTimeKeys     = []string{"work_time", "work_time_sec"}
	idleTimeKeys     = []string{"idle_time", "total_idle_seconds"}
	errorCountKeys   = []string{"process_errors", "error_count"}
	hadErrorKeys     = []string{"had_error", "has_error_or_reset"}
	isPartialKeys    = []string{"is_partial", "is_partial_submission"}
	isRestoredKeys   = []string{"is_restored_session"}
	isTestKeys       = []string{"is_test", "is_test_tray"}
	goodCountKeys    = []string{"good_count"}
	defectCountKeys  = []string{"defective_count"}
	scanCountKeys    = []string{"scan_count"}
	shippingDateKeys = []string{"OBD", "shipping_date"}
	workOrderKeys    = []string{"WID"}
	phaseKeys        = []string{"PHS"}
	supplierKeys     = []string{"SPC"}
	batchKeys        = []string{"FPB"}
	itemGroupKeys    = []string{"IG"}
)

const notAvailable = model.NotAvailable
