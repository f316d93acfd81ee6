// Package sessioncache caches filtered session sets per query key.
package sessioncache

import (
	"context"
	"strings"
	"time"

	"github.com/okian/linepulse/internal/domain/model"
)

// DefaultTTL is shorter than the file cache because filter combinations are
// numerous and rarely reused.
const DefaultTTL = 30 * time.Minute

// Store caches session sets by key. Any backend failure reads as a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]model.Session, bool)
	Set(ctx context.Context, key string, sessions []model.Session) error
}

// Key builds "<process>|<start>|<end>|<workers>" with workers sorted and
// comma-joined, or "all" when none are selected.
func Key(p model.Process, start, end time.Time, workers []string) string {
	w := "all"
	if len(workers) > 0 {
		w = strings.Join(model.Filter{WorkerIDs: workers}.Workers(), ",")
	}
	return strings.Join([]string{
		p.Key(),
		start.Format(time.DateOnly),
		end.Format(time.DateOnly),
		w,
	}, "|")
}

// KeyFor is Key over a Filter. Shipping bounds are appended when set.
func KeyFor(f model.Filter) string {
	k := Key(f.Process, f.StartDate, f.EndDate, f.WorkerIDs)
	if f.ShippingStart != nil || f.ShippingEnd != nil {
		k += "|ship:" + dateOrOpen(f.ShippingStart) + ".." + dateOrOpen(f.ShippingEnd)
	}
	return k
}

func dateOrOpen(t *time.Time) string {
	if t == nil {
		return "*"
	}
	return t.Format(time.DateOnly)
}
