package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/linepulse/internal/domain/model"
	"github.com/okian/linepulse/pkg/logger"
)

const defaultBusyTimeoutMS = 5000

// SQLiteSyncStore keeps sync records in the file_sync_log table.
type SQLiteSyncStore struct {
	db            *sql.DB
	log           logger.Logger
	busyTimeoutMS int
}

// NewSQLiteSyncStore opens (creating if needed) the database at dbPath.
func NewSQLiteSyncStore(ctx context.Context, dbPath string, opts ...Option) (*SQLiteSyncStore, error) {
	s := &SQLiteSyncStore{log: logger.Nop(), busyTimeoutMS: defaultBusyTimeoutMS}
	for _, opt := range opts {
		opt(s)
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create db dir: %w", ErrOpenStore, err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", dbPath, s.busyTimeoutMS)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	// A single connection serializes writers; upserts are tiny.
	db.SetMaxOpenConns(1)
	s.db = db
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSyncStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS file_sync_log (
  file_path TEXT PRIMARY KEY,
  file_name TEXT NOT NULL,
  last_modified INTEGER NOT NULL,
  last_synced_at INTEGER NOT NULL,
  row_count INTEGER NOT NULL DEFAULT 0,
  file_size INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL,
  error_message TEXT NOT NULL DEFAULT ''
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("%w: create file_sync_log: %w", ErrOpenStore, err)
	}
	return nil
}

// Get returns the record for path.
func (s *SQLiteSyncStore) Get(ctx context.Context, path string) (model.SyncRecord, error) {
	const q = `
SELECT file_path, file_name, last_modified, last_synced_at, row_count, file_size, status, error_message
FROM file_sync_log WHERE file_path = ?`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, q, path))
	if errors.Is(err, sql.ErrNoRows) {
		return model.SyncRecord{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return model.SyncRecord{}, fmt.Errorf("get sync record: %w", err)
	}
	return rec, nil
}

// List returns every record ordered by path.
func (s *SQLiteSyncStore) List(ctx context.Context) ([]model.SyncRecord, error) {
	const q = `
SELECT file_path, file_name, last_modified, last_synced_at, row_count, file_size, status, error_message
FROM file_sync_log ORDER BY file_path`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list sync records: %w", err)
	}
	defer rows.Close()

	var out []model.SyncRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Upsert writes rec, replacing any existing row for the same path.
func (s *SQLiteSyncStore) Upsert(ctx context.Context, rec model.SyncRecord) error {
	if rec.FilePath == "" {
		return ErrInvalidPath
	}
	const stmt = `
INSERT INTO file_sync_log (file_path, file_name, last_modified, last_synced_at, row_count, file_size, status, error_message)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(file_path) DO UPDATE SET
  file_name=excluded.file_name,
  last_modified=excluded.last_modified,
  last_synced_at=excluded.last_synced_at,
  row_count=excluded.row_count,
  file_size=excluded.file_size,
  status=excluded.status,
  error_message=excluded.error_message;
`
	_, err := s.db.ExecContext(ctx, stmt,
		rec.FilePath,
		rec.FileName,
		rec.LastModified.UnixNano(),
		rec.LastSyncedAt.UnixNano(),
		rec.RowCount,
		rec.FileSize,
		string(rec.Status),
		rec.ErrorMessage,
	)
	if err != nil {
		s.log.Warn(ctx, "sync record upsert failed", logger.String("path", rec.FilePath), logger.Error(err))
		return fmt.Errorf("upsert sync record: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSyncStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(r rowScanner) (model.SyncRecord, error) {
	var (
		rec           model.SyncRecord
		status        string
		modNs, syncNs int64
	)
	if err := r.Scan(&rec.FilePath, &rec.FileName, &modNs, &syncNs, &rec.RowCount, &rec.FileSize, &status, &rec.ErrorMessage); err != nil {
		return model.SyncRecord{}, err
	}
	rec.LastModified = time.Unix(0, modNs)
	rec.LastSyncedAt = time.Unix(0, syncNs)
	rec.Status = model.SyncStatus(status)
	return rec, nil
}
