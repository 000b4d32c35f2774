package metrics

import "errors"

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the record to every sink and joins their errors.
func (m *MultiSink) RecordSolve(rec SolveRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordSolve(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordPlan forwards hourly rows to the sinks that support them.
func (m *MultiSink) RecordPlan(hours []PlanHour) error {
	var errs []error
	for _, s := range m.Sinks {
		if pr, ok := s.(PlanRecorder); ok {
			if err := pr.RecordPlan(hours); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases every sink that holds resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, CloseSink(s))
	}
	return errors.Join(errs...)
}

// CloseSink closes s when it implements either Close() error or Close().
func CloseSink(s MetricsSink) error {
	switch c := s.(type) {
	case interface{ Close() error }:
		return c.Close()
	case interface{ Close() }:
		c.Close()
	}
	return nil
}
