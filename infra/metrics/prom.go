package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/v2g-planner/core/metrics"
)

// PromSink records solve outcomes in Prometheus metrics.
type PromSink struct {
	solves   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	nodes    *prometheus.HistogramVec
	netCost  *prometheus.GaugeVec
	energy   *prometheus.GaugeVec
	co2      *prometheus.GaugeVec
}

// NewPromSink registers planner metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_solves_total",
			Help: "Number of optimizer calls by mode and outcome",
		}, []string{"mode", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planner_solve_duration_seconds",
			Help:    "Wall time of optimizer calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		nodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planner_bnb_nodes",
			Help:    "Branch and bound nodes explored per solve",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"mode"}),
		netCost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_last_net_cost",
			Help: "Net cost of the last optimal plan",
		}, []string{"mode"}),
		energy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_last_energy_kwh",
			Help: "Energy moved by the last optimal plan per source",
		}, []string{"mode", "source"}),
		co2: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_last_co2_kg",
			Help: "CO2 emitted and avoided by the last optimal plan",
		}, []string{"mode", "kind"}),
	}
	var err error
	if s.solves, err = register(reg, s.solves); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.nodes, err = register(reg, s.nodes); err != nil {
		return nil, err
	}
	if s.netCost, err = register(reg, s.netCost); err != nil {
		return nil, err
	}
	if s.energy, err = register(reg, s.energy); err != nil {
		return nil, err
	}
	if s.co2, err = register(reg, s.co2); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when c was registered
// before, so sinks can be created more than once per process.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve updates counters for every solve and gauges for optimal ones.
func (s *PromSink) RecordSolve(rec coremetrics.SolveRecord) error {
	s.solves.WithLabelValues(rec.Mode, rec.Status).Inc()
	s.duration.WithLabelValues(rec.Mode).Observe(rec.Duration.Seconds())
	if rec.Status != "optimal" {
		return nil
	}
	s.nodes.WithLabelValues(rec.Mode).Observe(float64(rec.Nodes))
	s.netCost.WithLabelValues(rec.Mode).Set(rec.NetCost)
	s.energy.WithLabelValues(rec.Mode, "solar").Set(rec.SolarKWh)
	s.energy.WithLabelValues(rec.Mode, "grid").Set(rec.GridKWh)
	s.energy.WithLabelValues(rec.Mode, "v2g").Set(rec.DischargedKWh)
	s.co2.WithLabelValues(rec.Mode, "emitted").Set(rec.CO2EmittedKg)
	s.co2.WithLabelValues(rec.Mode, "avoided").Set(rec.CO2AvoidedKg)
	return nil
}
