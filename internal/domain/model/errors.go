package model

import "errors"

// Sentinel errors for model parsing and validation.
var (
	ErrUnknownProcess = errors.New("unknown process")
	ErrInvalidFilter  = errors.New("invalid filter")
)
