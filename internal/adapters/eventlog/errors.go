package eventlog

import "errors"

var (
	ErrLogDir         = errors.New("event log directory unavailable")
	ErrMissingColumns = errors.New("event log header is missing required columns")
	ErrUnknownPattern = errors.New("file pattern maps to an unknown process")
)
