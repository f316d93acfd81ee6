// Package syncer decides which event log files need re-ingestion and runs
// incremental sync passes over them.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/okian/linepulse/internal/adapters/repository"
	"github.com/okian/linepulse/internal/domain/model"
)

// RecordStore persists one SyncRecord per file path.
type RecordStore interface {
	Get(ctx context.Context, path string) (model.SyncRecord, error)
	List(ctx context.Context) ([]model.SyncRecord, error)
	Upsert(ctx context.Context, rec model.SyncRecord) error
}

// Controller compares file metadata against sync records. It never schedules
// work itself.
type Controller struct {
	store RecordStore
	now   func() time.Time
}

// NewController creates a Controller over store.
func NewController(store RecordStore, opts ...Option) *Controller {
	c := &Controller{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FilesNeedingSync returns the files that have no record, whose last attempt
// failed, or whose mtime is strictly newer than the recorded one.
func (c *Controller) FilesNeedingSync(ctx context.Context, files []model.FileStat) ([]model.FileStat, error) {
	records, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %w", ErrSyncFailed, err)
	}
	known := make(map[string]model.SyncRecord, len(records))
	for _, r := range records {
		known[r.FilePath] = r
	}

	out := make([]model.FileStat, 0, len(files))
	for _, f := range files {
		rec, ok := known[f.Path]
		if !ok || rec.Status == model.SyncFailed || f.ModTime.After(rec.LastModified) {
			out = append(out, f)
		}
	}
	return out, nil
}

// MarkSynced records a successful ingest of f.
func (c *Controller) MarkSynced(ctx context.Context, f model.FileStat, rows int) error {
	return c.store.Upsert(ctx, model.SyncRecord{
		FilePath:     f.Path,
		FileName:     filepath.Base(f.Path),
		LastModified: f.ModTime,
		LastSyncedAt: c.now(),
		RowCount:     rows,
		FileSize:     f.Size,
		Status:       model.SyncSuccess,
	})
}

// MarkFailed records a failed ingest. The previous LastModified is kept so a
// retry is not masked by the new mtime.
func (c *Controller) MarkFailed(ctx context.Context, f model.FileStat, cause error) error {
	rec := model.SyncRecord{
		FilePath:     f.Path,
		FileName:     filepath.Base(f.Path),
		LastSyncedAt: c.now(),
		FileSize:     f.Size,
		Status:       model.SyncFailed,
	}
	if cause != nil {
		rec.ErrorMessage = cause.Error()
	}
	prev, err := c.store.Get(ctx, f.Path)
	switch {
	case err == nil:
		rec.LastModified = prev.LastModified
		rec.RowCount = prev.RowCount
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("load previous record: %w", err)
	}
	return c.store.Upsert(ctx, rec)
}

// Records lists every tracked file.
func (c *Controller) Records(ctx context.Context) ([]model.SyncRecord, error) {
	return c.store.List(ctx)
}
