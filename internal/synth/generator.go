// Package synth writes synthetic collector event logs. The output follows the
// collector's file naming and row layout so it can be fed straight to sync.
package synth

import (
	"bytes"
	"cmp"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/text/encoding/korean"

	"github.com/okian/linepulse/internal/adapters/eventlog"
	"github.com/okian/linepulse/internal/domain/model"
	"github.com/okian/linepulse/internal/domain/session"
	"github.com/okian/linepulse/pkg/logger"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	dirPermission   = 0o755
	filePermission  = 0o644

	// Per-session timing in seconds. Shifts start at shiftStartHour plus jitter.
	shiftStartHour = 8
	shiftJitter    = 900
	workMin        = 180
	workMax        = 480
	latencyMin     = 5
	latencyMax     = 90

	partialPerMille = 20
	testPerMille    = 10
)

var header = []string{"timestamp", "event", "details", "worker"} //nolint:gochecknoglobals // fixed layout

var itemGroups = []string{"FROZEN", "CHILLED", "DRY", "FRESH"} //nolint:gochecknoglobals // sample values

// Generator produces deterministic logs for a seed.
type Generator struct {
	cfg     Config
	faker   *gofakeit.Faker
	log     logger.Logger
	markers map[model.Process]string
}

type row struct {
	at     time.Time
	fields []string
}

// New creates a Generator. A nil logger discards output.
func New(cfg Config, log logger.Logger) *Generator {
	markers := make(map[model.Process]string)
	for marker, p := range eventlog.DefaultPatterns() {
		markers[p] = marker
	}
	return &Generator{
		cfg:     cfg.withDefaults(),
		faker:   gofakeit.New(cfg.Seed),
		log:     logger.OrNop(log),
		markers: markers,
	}
}

// Generate writes one file per process and day under OutDir/<YYYY-MM-DD>/.
func (g *Generator) Generate(ctx context.Context) (Result, error) {
	res := Result{Workers: make(map[model.Process][]string)}
	if g.cfg.OutDir == "" {
		return res, fmt.Errorf("synth: output directory is required")
	}
	for _, p := range g.cfg.Processes {
		res.Workers[p] = g.workers(p)
	}
	for d := range g.cfg.Days {
		day := g.cfg.Start.AddDate(0, 0, d)
		for _, p := range g.cfg.Processes {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			rows, sessions := g.day(p, day, res.Workers[p])
			path, err := g.write(p, day, rows)
			if err != nil {
				return res, err
			}
			res.Files = append(res.Files, path)
			res.Events += len(rows)
			res.Sessions += sessions
			g.log.Debug(ctx, "synthetic log written",
				logger.String("path", path),
				logger.Int("rows", len(rows)),
				logger.Int("sessions", sessions))
		}
	}
	g.log.Info(ctx, "synthetic logs generated",
		logger.Int("files", len(res.Files)),
		logger.Int("events", res.Events),
		logger.Int("sessions", res.Sessions))
	return res, nil
}

func (g *Generator) workers(p model.Process) []string {
	out := make([]string, 0, g.cfg.Workers)
	for i := range g.cfg.Workers {
		name := strings.ToLower(g.faker.FirstName())
		out = append(out, fmt.Sprintf("%s%s%02d", strings.ToLower(string(p)), name, i+1))
	}
	return out
}

// day builds the rows for one process file, returning them in timestamp order
// with junk rows mixed in, plus the number of completed sessions.
func (g *Generator) day(p model.Process, day time.Time, workers []string) ([]row, int) {
	var rows []row
	sessions := 0
	for _, w := range workers {
		cursor := day.Add(shiftStartHour*time.Hour + time.Duration(g.faker.Number(0, shiftJitter))*time.Second)
		for i := range g.cfg.SessionsPerDay {
			work := g.faker.Number(workMin, workMax)
			end := cursor.Add(time.Duration(work) * time.Second)
			rows = append(rows,
				row{at: cursor, fields: []string{cursor.Format(timestampLayout), "TRAY_START", "", w}},
				row{at: end, fields: []string{end.Format(timestampLayout), session.DefaultCompletionKind, g.details(p, day, cursor, work, i), w}},
			)
			sessions++
			cursor = end.Add(time.Duration(g.faker.Number(latencyMin, latencyMax)) * time.Second)
		}
	}
	slices.SortStableFunc(rows, func(a, b row) int { return a.at.Compare(b.at) })

	junk := int(float64(len(rows)) * g.cfg.MalformedRate)
	for range junk {
		at := g.faker.Number(0, len(rows))
		rows = slices.Insert(rows, at, g.junk())
	}
	return rows, sessions
}

// details alternates the JSON and KEY=VALUE notations the collector has used.
func (g *Generator) details(p model.Process, day, start time.Time, work, seq int) string {
	attrs := map[string]string{
		"start_time": start.Format(timestampLayout),
		"work_time":  strconv.Itoa(work),
		"idle_time":  strconv.Itoa(g.faker.Number(0, work/10)),
		"CLC":        g.faker.Numerify("88#####"),
		"item_name":  g.faker.ProductName(),
		"OBD":        day.AddDate(0, 0, g.faker.Number(1, 5)).Format(time.DateOnly),
		"WID":        g.faker.Numerify("WO-######"),
		"PHS":        strconv.Itoa(g.faker.Number(1, 3)),
		"SPC":        g.faker.Numerify("S###"),
		"FPB":        g.faker.Numerify("B####"),
		"IG":         g.faker.RandomString(itemGroups),
	}
	if g.chance(int(g.cfg.ErrorRate * 1000)) {
		attrs["had_error"] = "1"
		attrs["process_errors"] = strconv.Itoa(g.faker.Number(1, 3))
	}
	if g.chance(partialPerMille) {
		attrs["is_partial"] = "1"
	}
	if g.chance(testPerMille) {
		attrs["is_test_tray"] = "1"
	}
	switch p {
	case model.ProcessInspection:
		defects := g.faker.Number(0, 4)
		attrs["good_count"] = strconv.Itoa(100 - defects)
		attrs["defective_count"] = strconv.Itoa(defects)
	case model.ProcessTransfer:
		attrs["scan_count"] = strconv.Itoa(g.faker.Number(20, 80))
	}

	if seq%2 == 0 {
		body, _ := json.Marshal(attrs)
		return string(body)
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, cmp.Compare[string])
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+attrs[k])
	}
	return strings.Join(pairs, "|")
}

func (g *Generator) junk() row {
	if g.faker.Number(0, 1) == 0 {
		return row{fields: []string{"garbage"}}
	}
	return row{fields: []string{"not-a-time", session.DefaultCompletionKind, "{}", "nobody"}}
}

func (g *Generator) chance(perMille int) bool {
	return perMille > 0 && g.faker.Number(0, 999) < perMille
}

func (g *Generator) write(p model.Process, day time.Time, rows []row) (string, error) {
	dir := filepath.Join(g.cfg.OutDir, day.Format(time.DateOnly))
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return "", fmt.Errorf("synth: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", g.markers[p], day.Format("20060102")))

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	for _, r := range rows {
		_ = w.Write(r.fields)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("synth: encode %s: %w", path, err)
	}

	body := buf.Bytes()
	if g.cfg.CP949 {
		enc, err := korean.EUCKR.NewEncoder().Bytes(body)
		if err != nil {
			return "", fmt.Errorf("synth: cp949 %s: %w", path, err)
		}
		body = enc
	}
	if err := os.WriteFile(path, body, filePermission); err != nil {
		return "", fmt.Errorf("synth: write %s: %w", path, err)
	}
	return path, nil
}
