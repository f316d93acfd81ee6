// Package filecache stores reconstructed sessions per source log file on local
// disk. Entries are keyed by a fingerprint of the file's path, modification
// time and size, and expire after a fixed TTL regardless of fingerprint.
package filecache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/okian/linepulse/internal/domain/model"
	"github.com/okian/linepulse/pkg/logger"
	"github.com/okian/linepulse/pkg/metrics"
)

const (
	// SchemaVersion is bumped whenever the entry layout or Session fields change.
	SchemaVersion = 2

	// DefaultTTL bounds staleness even when file metadata is unreliable.
	DefaultTTL = 24 * time.Hour

	entrySuffix  = ".json.zst"
	tempPattern  = ".tmp-*"
	metricsLabel = "file"
)

type entry struct {
	SchemaVersion int             `json:"schema_version"`
	Fingerprint   string          `json:"fingerprint"`
	SourcePath    string          `json:"source_path"`
	CreatedAt     time.Time       `json:"created_at"`
	Sessions      []model.Session `json:"sessions"`
}

// Cache is a disk-backed, concurrency-safe file-level session cache. Concurrent
// writers of the same key race to rename identical content into place.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
	log logger.Logger

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// New creates the cache directory if needed.
func New(dir string, opts ...Option) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCacheDir, dir, err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	c := &Cache{
		dir: dir,
		ttl: DefaultTTL,
		now: time.Now,
		log: logger.Nop(),
		enc: enc,
		dec: dec,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the codec resources.
func (c *Cache) Close() error {
	c.dec.Close()
	return c.enc.Close()
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Fingerprint identifies one version of a source file.
func Fingerprint(path string, modTime time.Time, size int64) string {
	d := xxhash.New()
	_, _ = d.WriteString(filepath.Clean(path))
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.FormatInt(modTime.UnixNano(), 10))
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.FormatInt(size, 10))
	return strconv.FormatUint(d.Sum64(), 16)
}

// Get returns the cached sessions of path. Every failure is a miss.
func (c *Cache) Get(ctx context.Context, path string) ([]model.Session, bool) {
	info, err := os.Stat(path)
	if err != nil {
		metrics.RecordCacheMiss(metricsLabel)
		return nil, false
	}
	fp := Fingerprint(path, info.ModTime(), info.Size())

	raw, err := os.ReadFile(c.entryPath(fp))
	if err != nil {
		metrics.RecordCacheMiss(metricsLabel)
		return nil, false
	}

	e, err := c.decode(raw)
	switch {
	case err != nil:
		c.corrupt(ctx, fp, "decode", err)
		return nil, false
	case e.SchemaVersion != SchemaVersion:
		c.corrupt(ctx, fp, "schema", fmt.Errorf("schema version %d", e.SchemaVersion))
		return nil, false
	case e.Fingerprint != fp:
		c.corrupt(ctx, fp, "fingerprint", fmt.Errorf("entry fingerprint %s", e.Fingerprint))
		return nil, false
	case c.expired(e.CreatedAt):
		metrics.RecordCacheMiss(metricsLabel)
		return nil, false
	}

	metrics.RecordCacheHit(metricsLabel)
	if e.Sessions == nil {
		e.Sessions = []model.Session{}
	}
	return e.Sessions, true
}

// Put stores sessions under the fingerprint of stat, which must describe the
// file as it was before its content was read. A source that grows in between
// then lands under the older fingerprint and the next Get misses.
func (c *Cache) Put(ctx context.Context, stat model.FileStat, sessions []model.Session) error {
	if stat.Path == "" || stat.ModTime.IsZero() {
		metrics.RecordCacheWriteError(metricsLabel)
		return fmt.Errorf("%w: %q", ErrSourceStat, stat.Path)
	}
	path := stat.Path
	fp := Fingerprint(path, stat.ModTime, stat.Size)
	if sessions == nil {
		sessions = []model.Session{}
	}

	body, err := json.Marshal(entry{
		SchemaVersion: SchemaVersion,
		Fingerprint:   fp,
		SourcePath:    path,
		CreatedAt:     c.now().UTC(),
		Sessions:      sessions,
	})
	if err != nil {
		metrics.RecordCacheWriteError(metricsLabel)
		return fmt.Errorf("%w: encode: %w", ErrCacheWrite, err)
	}

	if err := c.writeAtomic(fp, c.enc.EncodeAll(body, nil)); err != nil {
		metrics.RecordCacheWriteError(metricsLabel)
		return err
	}
	metrics.RecordCacheWrite(metricsLabel)
	c.log.Debug(ctx, "file cache entry written",
		logger.String("source", path),
		logger.String("fingerprint", fp),
		logger.Int("sessions", len(sessions)))
	return nil
}

// Prune deletes expired or unreadable entries and stale temp files.
func (c *Cache) Prune(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrCacheDir, c.dir, err)
	}
	removed := 0
	for _, de := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if de.IsDir() {
			continue
		}
		name := de.Name()
		full := filepath.Join(c.dir, name)
		stale := false
		switch {
		case strings.Contains(name, ".tmp-"):
			info, err := de.Info()
			stale = err == nil && c.expired(info.ModTime())
		case strings.HasSuffix(name, entrySuffix):
			raw, err := os.ReadFile(full)
			if err != nil {
				continue
			}
			e, err := c.decode(raw)
			stale = err != nil || e.SchemaVersion != SchemaVersion || c.expired(e.CreatedAt)
		}
		if !stale {
			continue
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			c.log.Warn(ctx, "file cache prune failed", logger.String("entry", name), logger.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		c.log.Info(ctx, "file cache pruned", logger.Int("removed", removed))
	}
	return removed, nil
}

func (c *Cache) entryPath(fp string) string {
	return filepath.Join(c.dir, fp+entrySuffix)
}

func (c *Cache) expired(createdAt time.Time) bool {
	return c.now().Sub(createdAt) >= c.ttl
}

func (c *Cache) decode(raw []byte) (entry, error) {
	var e entry
	body, err := c.dec.DecodeAll(raw, nil)
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(body, &e)
	return e, err
}

func (c *Cache) corrupt(ctx context.Context, fp, reason string, err error) {
	metrics.RecordCacheCorrupt(metricsLabel)
	metrics.RecordCacheMiss(metricsLabel)
	c.log.Warn(ctx, "file cache entry rejected",
		logger.String("fingerprint", fp),
		logger.String("reason", reason),
		logger.Error(err))
}

func (c *Cache) writeAtomic(fp string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, fp+tempPattern)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCacheWrite, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrCacheWrite, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrCacheWrite, err)
	}
	if err := os.Rename(tmpName, c.entryPath(fp)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrCacheWrite, err)
	}
	return nil
}
