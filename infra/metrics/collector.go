package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/v2g-planner/core/metrics"
	"github.com/kilianp07/v2g-planner/core/scheduler"
	"github.com/kilianp07/v2g-planner/infra/logger"
	"github.com/kilianp07/v2g-planner/internal/eventbus"
)

// StartEventCollector subscribes to the solve bus and feeds every event to
// sink on its own goroutine, keeping slow sinks off the solver's path. The
// returned channel is closed once the collector has stopped, which happens
// when ctx is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[scheduler.Event], sink coremetrics.MetricsSink, buffer int) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.SubscribeN(buffer)
	obs := coremetrics.NewObserver(sink, logger.New("metrics-collector"))
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				obs.ObserveSolve(ctx, ev)
			}
		}
	}()
	return done
}
