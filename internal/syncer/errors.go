package syncer

import "errors"

var (
	ErrSyncFailed     = errors.New("sync pass failed")
	ErrSyncInProgress = errors.New("sync pass already running")
)
