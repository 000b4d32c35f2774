package metrics

import (
	"context"

	"github.com/kilianp07/v2g-planner/core/logger"
	"github.com/kilianp07/v2g-planner/core/scheduler"
)

// Observer reports solve events to a sink. Sink errors are logged only.
type Observer struct {
	sink MetricsSink
	log  logger.Logger
}

func NewObserver(sink MetricsSink, log logger.Logger) *Observer {
	return &Observer{sink: sink, log: log}
}

func (o *Observer) ObserveSolve(_ context.Context, ev scheduler.Event) {
	if err := o.sink.RecordSolve(FromEvent(ev)); err != nil {
		o.log.Warnf("record solve %s: %v", ev.ID, err)
	}
	pr, ok := o.sink.(PlanRecorder)
	if !ok || ev.Result == nil || ev.Result.Horizon == 0 {
		return
	}
	if err := pr.RecordPlan(PlanHours(ev)); err != nil {
		o.log.Warnf("record plan %s: %v", ev.ID, err)
	}
}
