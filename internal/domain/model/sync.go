package model

import "time"

// SyncStatus is the outcome of the last sync attempt for a file.
type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncFailed  SyncStatus = "failed"
)

// SyncRecord tracks one source file across sync passes.
type SyncRecord struct {
	FilePath     string
	FileName     string
	LastModified time.Time
	LastSyncedAt time.Time
	RowCount     int
	FileSize     int64
	Status       SyncStatus
	ErrorMessage string
}

// FileStat is the (path, mtime) pair the sync controller compares against records.
type FileStat struct {
	Path    string
	ModTime time.Time
	Size    int64
	Process Process
}
