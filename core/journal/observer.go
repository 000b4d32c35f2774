package journal

import (
	"context"

	"github.com/kilianp07/v2g-planner/core/logger"
	"github.com/kilianp07/v2g-planner/core/scheduler"
)

// Observer appends every solve event to a Store. Write failures are logged
// and never reach the solver's caller.
type Observer struct {
	store Store
	log   logger.Logger
}

func NewObserver(store Store, log logger.Logger) *Observer {
	return &Observer{store: store, log: log}
}

func (o *Observer) ObserveSolve(ctx context.Context, ev scheduler.Event) {
	if err := o.store.Append(context.WithoutCancel(ctx), FromEvent(ev)); err != nil {
		o.log.Errorf("journal append %s: %v", ev.ID, err)
	}
}
