// Package eventlog discovers and reads the collector's CSV work-event logs.
package eventlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"

	"github.com/okian/linepulse/internal/domain/model"
	"github.com/okian/linepulse/internal/timeparse"
	"github.com/okian/linepulse/pkg/logger"
	"github.com/okian/linepulse/pkg/metrics"
)

// UnknownWorker is used when neither a worker column nor the file name names one.
const UnknownWorker = "UNKNOWN_WORKER"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader parses event log files into RawEvents.
type Reader struct {
	log      logger.Logger
	loc      *time.Location
	patterns Patterns
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{log: logger.Nop(), loc: time.Local, patterns: DefaultPatterns()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type columns struct {
	timestamp, event, details, worker int
}

// ReadRawEvents reads every well-formed row of path. A missing or empty file
// yields no events and no error. Malformed rows are skipped.
func (r *Reader) ReadRawEvents(ctx context.Context, path string) ([]model.RawEvent, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.RawEvent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return []model.RawEvent{}, nil
	}
	body, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	name := filepath.Base(path)
	process, _ := r.patterns.Match(name)
	fileWorker, ok := FileWorker(name)
	if !ok {
		fileWorker = UnknownWorker
	}

	cr := csv.NewReader(bytes.NewReader(body))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []model.RawEvent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	cols, err := locate(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	events := make([]model.RawEvent, 0, 256)
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			r.skip(ctx, "malformed_row", path, line, err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(rec) <= cols.max() {
			r.skip(ctx, "short_row", path, line, nil)
			continue
		}
		ts, err := timeparse.Parse(rec[cols.timestamp], r.loc)
		if err != nil {
			r.skip(ctx, "bad_timestamp", path, line, err)
			continue
		}
		worker := fileWorker
		if cols.worker >= 0 {
			if w := strings.TrimSpace(rec[cols.worker]); w != "" {
				worker = w
			}
		}
		events = append(events, model.RawEvent{
			Timestamp:  ts,
			WorkerID:   worker,
			Process:    process,
			Kind:       strings.TrimSpace(rec[cols.event]),
			Details:    rec[cols.details],
			SourceFile: path,
		})
	}

	metrics.RecordEventsRead(process.Key(), len(events))
	return events, nil
}

func (r *Reader) skip(ctx context.Context, reason, path string, line int, err error) {
	metrics.RecordEventSkipped(reason)
	fields := []logger.Field{
		logger.String("reason", reason),
		logger.String("file", path),
		logger.Int("line", line),
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	r.log.Debug(ctx, "event log row skipped", fields...)
}

// decode returns UTF-8 text, trying UTF-8 first and CP949 second.
func decode(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}
	return korean.EUCKR.NewDecoder().Bytes(raw)
}

func locate(header []string) (columns, error) {
	c := columns{timestamp: -1, event: -1, details: -1, worker: -1}
	workerName := -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))) {
		case "timestamp":
			c.timestamp = i
		case "event":
			c.event = i
		case "details":
			c.details = i
		case "worker":
			c.worker = i
		case "worker_name":
			workerName = i
		}
	}
	if c.worker < 0 {
		c.worker = workerName
	}
	var missing []string
	if c.timestamp < 0 {
		missing = append(missing, "timestamp")
	}
	if c.event < 0 {
		missing = append(missing, "event")
	}
	if c.details < 0 {
		missing = append(missing, "details")
	}
	if len(missing) > 0 {
		return c, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return c, nil
}

func (c columns) max() int {
	return max(c.timestamp, c.event, c.details, c.worker)
}
