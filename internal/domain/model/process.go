// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Process identifies a production stage on the line.
type Process string

const (
	// ProcessPackaging closes a fixed number of units per session.
	ProcessPackaging Process = "A"
	// ProcessInspection counts good and defective units and tracks defects.
	ProcessInspection Process = "B"
	// ProcessTransfer counts scanned units.
	ProcessTransfer Process = "C"
	// ProcessAll selects every process in a filter.
	ProcessAll Process = ""
)

// Processes lists every concrete process in display order.
func Processes() []Process {
	return []Process{ProcessPackaging, ProcessInspection, ProcessTransfer}
}

// ParseProcess accepts A, B or C case-insensitively. Empty or "all" yields ProcessAll.
func ParseProcess(s string) (Process, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ALL":
		return ProcessAll, nil
	case "A":
		return ProcessPackaging, nil
	case "B":
		return ProcessInspection, nil
	case "C":
		return ProcessTransfer, nil
	default:
		return ProcessAll, fmt.Errorf("%w: %q", ErrUnknownProcess, s)
	}
}

// TracksDefects reports whether sessions of this process carry a defect count.
func (p Process) TracksDefects() bool { return p == ProcessInspection }

// Key returns the process code, or "all" for ProcessAll.
func (p Process) Key() string {
	if p == ProcessAll {
		return "all"
	}
	return string(p)
}

func (p Process) String() string { return p.Key() }
