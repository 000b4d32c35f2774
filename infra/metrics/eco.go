package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	core "github.com/kilianp07/v2g-planner/core/metrics"
	eco "github.com/kilianp07/v2g-planner/core/metrics/eco"
)

// EcoSink aggregates optimal plans into daily ecological KPIs.
type EcoSink struct {
	store   eco.Store
	factor  float64
	avoided *prometheus.GaugeVec
	emitted *prometheus.GaugeVec
	share   *prometheus.GaugeVec
}

// NewEcoSink creates a sink with Prometheus gauges registered on reg.
// factor is the grid emission factor in kg CO2 per kWh.
func NewEcoSink(store eco.Store, factor float64, reg prometheus.Registerer) (*EcoSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &EcoSink{
		store:  store,
		factor: factor,
		avoided: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_daily_co2_avoided_kg",
			Help: "CO2 avoided by solar charging per day",
		}, []string{"mode", "day"}),
		emitted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_daily_co2_emitted_kg",
			Help: "CO2 emitted by grid charging per day",
		}, []string{"mode", "day"}),
		share: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_daily_solar_share",
			Help: "Fraction of charged energy coming from solar per day",
		}, []string{"mode", "day"}),
	}
	var err error
	if s.avoided, err = register(reg, s.avoided); err != nil {
		return nil, err
	}
	if s.emitted, err = register(reg, s.emitted); err != nil {
		return nil, err
	}
	if s.share, err = register(reg, s.share); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordSolve adds an optimal plan to the KPI of its day.
func (s *EcoSink) RecordSolve(rec core.SolveRecord) error {
	if rec.Status != "optimal" {
		return nil
	}
	r := eco.Record{
		Mode:          rec.Mode,
		Date:          rec.Time,
		SolarKWh:      rec.SolarKWh,
		GridKWh:       rec.GridKWh,
		DischargedKWh: rec.DischargedKWh,
		Solves:        1,
	}
	if err := s.store.Add(r); err != nil {
		return err
	}
	day := eco.Day(rec.Time)
	records, err := s.store.Query(rec.Mode, day, day)
	if err != nil || len(records) == 0 {
		return err
	}
	agg := records[0]
	label := day.Format("2006-01-02")
	s.avoided.WithLabelValues(rec.Mode, label).Set(agg.CO2Avoided(s.factor))
	s.emitted.WithLabelValues(rec.Mode, label).Set(agg.CO2Emitted(s.factor))
	s.share.WithLabelValues(rec.Mode, label).Set(agg.SolarShare())
	return nil
}

// Close releases the KPI store when it holds a resource.
func (s *EcoSink) Close() error {
	if c, ok := s.store.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Store returns the KPI store the sink aggregates into.
func (s *EcoSink) Store() eco.Store { return s.store }

// Factor returns the grid emission factor in kg CO2 per kWh.
func (s *EcoSink) Factor() float64 { return s.factor }

// FindEcoSink returns the first EcoSink in s, looking inside MultiSinks.
func FindEcoSink(s core.MetricsSink) *EcoSink {
	switch v := s.(type) {
	case *EcoSink:
		return v
	case *core.MultiSink:
		for _, inner := range v.Sinks {
			if e := FindEcoSink(inner); e != nil {
				return e
			}
		}
	}
	return nil
}
