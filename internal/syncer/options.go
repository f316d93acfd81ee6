package syncer

import (
	"time"

	"github.com/okian/linepulse/pkg/logger"
)

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now for LastSyncedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers bounds how many files are ingested at once.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRunnerLogger sets the runner logger.
func WithRunnerLogger(l logger.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = logger.OrNop(l)
	}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period after the last file event before a trigger.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInterval sets the periodic trigger interval. Zero disables it.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithFileFilter restricts which file names can trigger a pass.
func WithFileFilter(match func(name string) bool) WatcherOption {
	return func(w *Watcher) {
		if match != nil {
			w.match = match
		}
	}
}

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = logger.OrNop(l)
	}
}
