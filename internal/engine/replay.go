package engine

import (
	"context"
	"fmt"

	"github.com/roach88/watchtower/internal/model"
)

// Replay feeds recorded history through d in seq order and returns every
// notification enqueued along the way.
//
// d should be fresh and backed by an empty store: Replay primes it, so the
// first recorded value of each collection is compared against an empty
// baseline. Recorded violations are skipped because d derives its own.
// Entries must already be sorted by Seq.
func Replay(ctx context.Context, d *Dispatcher, history []model.HistoryEntry) ([]model.Notification, error) {
	if err := d.Prime(ctx); err != nil {
		return nil, fmt.Errorf("prime replay: %w", err)
	}

	var out []model.Notification
	var last int64
	for _, h := range history {
		if h.Seq <= last {
			return out, fmt.Errorf("history out of order at seq %d (after %d)", h.Seq, last)
		}
		last = h.Seq
		if h.Collection == model.CollectionViolations {
			continue
		}
		notes, err := d.Replace(ctx, h.Collection, h.Data)
		if err != nil {
			return out, fmt.Errorf("replay seq %d: %w", h.Seq, err)
		}
		out = append(out, notes...)
	}
	return out, nil
}
