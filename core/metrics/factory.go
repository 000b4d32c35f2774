package metrics

import (
	"errors"
	"fmt"

	"github.com/kilianp07/v2g-planner/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinkRegistry.Names() }

// NewMetricsSink creates a MetricsSink from the provided configuration. No
// configuration yields a NopSink and several a MultiSink. Sinks already
// built are closed when a later one fails.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]MetricsSink, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			errs := []error{fmt.Errorf("sink %d: %w", i, err)}
			for _, built := range sinks {
				errs = append(errs, CloseSink(built))
			}
			return nil, errors.Join(errs...)
		}
		sinks = append(sinks, s)
	}
	return NewMultiSink(sinks...), nil
}
