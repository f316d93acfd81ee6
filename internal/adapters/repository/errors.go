package repository

import "errors"

// Sentinel kinds for sync record errors.
var (
	ErrNotFound    = errors.New("sync record not found")
	ErrInvalidPath = errors.New("sync record has empty file path")
	ErrOpenStore   = errors.New("open sync store")
)
