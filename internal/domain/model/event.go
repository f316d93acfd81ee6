package model

import "time"

// RawEvent is one row of a collector event log. It is immutable once read.
type RawEvent struct {
	Timestamp  time.Time // when the collector wrote the row
	WorkerID   string
	Process    Process
	Kind       string // event type, e.g. TRAY_COMPLETE
	Details    string // raw attribute blob, JSON object or KEY=VALUE|KEY=VALUE
	SourceFile string
}
