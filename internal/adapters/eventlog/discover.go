package eventlog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/okian/linepulse/internal/domain/model"
)

const archiveDir = "log"

var (
	fileDateRE   = regexp.MustCompile(`_(\d{8})\.csv$`)
	datedDirRE   = regexp.MustCompile(`^\d{4}-`)
	fileWorkerRE = regexp.MustCompile(`_([^_]+)_\d{8}\.csv$`)
)

// Discover lists the event log files under root: the root itself, date-named
// archive folders directly below it (e.g. 2025-03) and everything below log/.
// Only .csv files whose name matches a pattern are returned, sorted by path.
func Discover(root string, patterns Patterns) ([]model.FileStat, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLogDir, root, err)
	}

	seen := make(map[string]model.FileStat)
	add := func(path string, d fs.DirEntry) {
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".csv") {
			return
		}
		p, ok := patterns.Match(d.Name())
		if !ok {
			return
		}
		info, err := d.Info()
		if err != nil {
			return
		}
		seen[path] = model.FileStat{Path: path, ModTime: info.ModTime(), Size: info.Size(), Process: p}
	}

	for _, e := range entries {
		full := filepath.Join(root, e.Name())
		switch {
		case !e.IsDir():
			add(full, e)
		case e.Name() == archiveDir:
			_ = filepath.WalkDir(full, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return nil
				}
				add(path, d)
				return nil
			})
		case datedDirRE.MatchString(e.Name()):
			sub, err := os.ReadDir(full)
			if err != nil {
				continue
			}
			for _, s := range sub {
				add(filepath.Join(full, s.Name()), s)
			}
		}
	}

	out := make([]model.FileStat, 0, len(seen))
	for _, st := range seen {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// FileDate extracts the collection day from a "_YYYYMMDD.csv" suffix.
func FileDate(name string, loc *time.Location) (time.Time, bool) {
	m := fileDateRE.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation("20060102", m[1], loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// FileWorker returns the worker encoded as "<marker>_<worker>_<YYYYMMDD>.csv".
func FileWorker(name string) (string, bool) {
	m := fileWorkerRE.FindStringSubmatch(filepath.Base(name))
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// FilterByDateRange keeps files dated within [start-1d, end+1d] and every file
// without a date in its name. Sessions spanning midnight are logged into the
// neighbouring day's file, hence the margin.
func FilterByDateRange(files []model.FileStat, start, end time.Time) []model.FileStat {
	loc := start.Location()
	lo := model.Day(start).AddDate(0, 0, -1)
	hi := model.Day(end.In(loc)).AddDate(0, 0, 1)
	out := make([]model.FileStat, 0, len(files))
	for _, f := range files {
		d, ok := FileDate(f.Path, loc)
		if !ok || (!d.Before(lo) && !d.After(hi)) {
			out = append(out, f)
		}
	}
	return out
}

// ForProcess keeps the files of p, or all files for model.ProcessAll.
func ForProcess(files []model.FileStat, p model.Process) []model.FileStat {
	if p == model.ProcessAll {
		return files
	}
	out := make([]model.FileStat, 0, len(files))
	for _, f := range files {
		if f.Process == p {
			out = append(out, f)
		}
	}
	return out
}
