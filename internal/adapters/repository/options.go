package repository

import "github.com/okian/linepulse/pkg/logger"

// Option configures a SQLiteSyncStore.
type Option func(*SQLiteSyncStore)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteSyncStore) {
		s.log = logger.OrNop(l)
	}
}

// WithBusyTimeout sets the SQLite busy timeout in milliseconds.
func WithBusyTimeout(ms int) Option {
	return func(s *SQLiteSyncStore) {
		if ms > 0 {
			s.busyTimeoutMS = ms
		}
	}
}
