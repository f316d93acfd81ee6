package eventlog

import (
	"time"

	"github.com/okian/linepulse/pkg/logger"
)

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger for skipped rows.
func WithLogger(l logger.Logger) Option {
	return func(r *Reader) {
		r.log = logger.OrNop(l)
	}
}

// WithLocation sets the zone naive timestamps are read in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(r *Reader) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithPatterns overrides the filename markers used to tag events with a process.
func WithPatterns(p Patterns) Option {
	return func(r *Reader) {
		if len(p) > 0 {
			r.patterns = p
		}
	}
}
