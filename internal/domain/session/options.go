package session

import "github.com/okian/linepulse/pkg/logger"

// Option applies a configuration option to the Reconstructor.
type Option func(*Reconstructor)

// WithLogger sets the logger used for skipped-event diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconstructor) {
		if l != nil {
			r.log = l
		}
	}
}

// WithCompletionKind sets the event kind that closes a session.
func WithCompletionKind(kind string) Option {
	return func(r *Reconstructor) {
		if kind != "" {
			r.completionKind = kind
		}
	}
}

// WithPackagingUnits sets the fixed unit count of a packaging session.
func WithPackagingUnits(units int) Option {
	return func(r *Reconstructor) {
		if units > 0 {
			r.packagingUnits = units
		}
	}
}
