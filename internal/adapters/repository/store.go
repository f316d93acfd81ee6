// Package repository persists per-file synchronization records.
package repository

import (
	"context"

	"github.com/okian/linepulse/internal/domain/model"
)

// Store provides read/write access to sync records keyed by file path.
type Store interface {
	// Get returns the record for path, or ErrNotFound.
	Get(ctx context.Context, path string) (model.SyncRecord, error)

	// List returns every record ordered by path.
	List(ctx context.Context) ([]model.SyncRecord, error)

	// Upsert inserts or replaces the record for rec.FilePath. Last writer wins.
	Upsert(ctx context.Context, rec model.SyncRecord) error

	Close() error
}
