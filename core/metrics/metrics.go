package metrics

import (
	"time"

	"github.com/kilianp07/v2g-planner/core/scheduler"
)

// SolveRecord summarizes one optimizer call.
type SolveRecord struct {
	ID       string
	Time     time.Time
	Mode     string
	Status   string
	Horizon  int
	Duration time.Duration
	Nodes    int

	NetCost       float64
	SolarKWh      float64
	GridKWh       float64
	DischargedKWh float64
	CO2EmittedKg  float64
	CO2AvoidedKg  float64
	FinalSoC      float64
}

// FromEvent flattens a solve event. Energy and cost fields stay zero when
// the solve failed.
func FromEvent(ev scheduler.Event) SolveRecord {
	rec := SolveRecord{
		ID:       ev.ID,
		Time:     ev.Time,
		Mode:     ev.Input.Mode.String(),
		Status:   ev.Status(),
		Horizon:  ev.Input.Horizon,
		Duration: ev.Duration,
		Nodes:    ev.Stats.Nodes,
	}
	if r := ev.Result; r != nil {
		t := r.Totals()
		rec.NetCost = r.NetCost
		rec.SolarKWh = t.SolarKWh
		rec.GridKWh = t.GridKWh
		rec.DischargedKWh = t.DischargedKWh
		rec.CO2EmittedKg = r.CO2EmittedKg
		rec.CO2AvoidedKg = r.CO2AvoidedKg
		rec.FinalSoC = r.FilledByDeadline
	}
	return rec
}

// MetricsSink records solve outcomes for observability purposes.
type MetricsSink interface {
	RecordSolve(rec SolveRecord) error
}

// PlanHour is one hour of a solved plan.
type PlanHour struct {
	SolveID   string
	Mode      string
	Time      time.Time
	Hour      int
	Solar     float64
	Grid      float64
	Discharge float64
	SoC       float64
	Price     float64
	Action    string
}

// PlanRecorder is implemented by sinks able to store the hourly schedule.
type PlanRecorder interface {
	RecordPlan(hours []PlanHour) error
}

// PlanHours expands a successful event into hourly rows. Hour h is stamped
// at the start of the solve hour plus h hours.
func PlanHours(ev scheduler.Event) []PlanHour {
	r := ev.Result
	if r == nil {
		return nil
	}
	base := ev.Time.Truncate(time.Hour)
	out := make([]PlanHour, r.Horizon)
	for h := range out {
		out[h] = PlanHour{
			SolveID:   ev.ID,
			Mode:      r.Mode.String(),
			Time:      base.Add(time.Duration(h) * time.Hour),
			Hour:      h,
			Solar:     r.SolarCharging[h],
			Grid:      r.GridCharging[h],
			Discharge: r.GridDischarging[h],
			SoC:       r.BatterySoC[h+1],
			Price:     ev.Input.Price[h],
			Action:    r.Actions[h].String(),
		}
	}
	return out
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveRecord) error { return nil }
func (NopSink) RecordPlan([]PlanHour) error   { return nil }
