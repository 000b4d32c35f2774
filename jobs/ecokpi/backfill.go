// Package ecokpi rebuilds daily KPI records from the solve journal.
package ecokpi

import (
	"context"

	"github.com/kilianp07/v2g-planner/core/journal"
	eco "github.com/kilianp07/v2g-planner/core/metrics/eco"
)

// Backfill adds every optimal journaled plan matching q to store and
// returns how many were added. Running it twice over the same range counts
// the plans twice.
func Backfill(ctx context.Context, store eco.Store, history journal.Store, q journal.Query) (int, error) {
	recs, err := history.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, h := range recs {
		if h.Status != "optimal" || h.Result == nil {
			continue
		}
		t := h.Result.Totals()
		rec := eco.Record{
			Mode:          h.Mode.String(),
			Date:          eco.Day(h.Timestamp),
			SolarKWh:      t.SolarKWh,
			GridKWh:       t.GridKWh,
			DischargedKWh: t.DischargedKWh,
			Solves:        1,
		}
		if err := store.Add(rec); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
