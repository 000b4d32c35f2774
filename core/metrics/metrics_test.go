package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/v2g-planner/core/model"
	"github.com/kilianp07/v2g-planner/core/scheduler"
)

type recordSink struct {
	solves int
	plans  int
	err    error
}

func (r *recordSink) RecordSolve(SolveRecord) error {
	r.solves++
	return r.err
}

func (r *recordSink) RecordPlan([]PlanHour) error {
	r.plans++
	return r.err
}

type solveOnly struct{ count int }

func (s *solveOnly) RecordSolve(SolveRecord) error {
	s.count++
	return nil
}

type nopLog struct{ warns int }

func (nopLog) Debugf(string, ...any)         {}
func (nopLog) Debugw(string, map[string]any) {}
func (nopLog) Infof(string, ...any)          {}
func (l *nopLog) Warnf(string, ...any)       { l.warns++ }
func (nopLog) Errorf(string, ...any)         {}

func okEvent() scheduler.Event {
	return scheduler.Event{
		ID:    "ok",
		Time:  time.Date(2024, 2, 2, 7, 45, 0, 0, time.UTC),
		Input: scheduler.Input{Horizon: 2, Mode: model.ModeEco, Price: []float64{0.1, 0.3}},
		Result: &scheduler.Result{
			Mode:            model.ModeEco,
			Horizon:         2,
			SolarCharging:   []float64{3, 0, 0},
			GridCharging:    []float64{0, 0, 0},
			GridDischarging: []float64{0, 3, 0},
			BatterySoC:      []float64{5, 8, 5},
			Actions:         []model.Action{model.ActionSolar, model.ActionDischarge},
			NetCost:         -0.3,
			CO2AvoidedKg:    0.699,
		},
	}
}

func TestFromEvent(t *testing.T) {
	rec := FromEvent(okEvent())
	assert.Equal(t, "eco", rec.Mode)
	assert.Equal(t, "optimal", rec.Status)
	assert.Equal(t, 3.0, rec.SolarKWh)
	assert.Equal(t, 3.0, rec.DischargedKWh)
	assert.Equal(t, -0.3, rec.NetCost)

	failed := FromEvent(scheduler.Event{Input: scheduler.Input{Horizon: 3}, Err: &scheduler.InfeasibleError{}})
	assert.Equal(t, "infeasible", failed.Status)
	assert.Zero(t, failed.SolarKWh)
}

func TestPlanHours(t *testing.T) {
	hours := PlanHours(okEvent())
	require.Len(t, hours, 2)
	assert.Equal(t, time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC), hours[1].Time)
	assert.Equal(t, "discharge", hours[1].Action)
	assert.Equal(t, 5.0, hours[1].SoC)
	assert.Equal(t, 0.3, hours[1].Price)
	assert.Nil(t, PlanHours(scheduler.Event{}))
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{err: errors.New("down")}
	s3 := &solveOnly{}
	m := NewMultiSink(s1, s2, s3)
	err := m.RecordSolve(SolveRecord{})
	assert.ErrorContains(t, err, "down")
	assert.Equal(t, 1, s1.solves)
	assert.Equal(t, 1, s3.count)

	assert.Error(t, m.RecordPlan(nil))
	assert.Equal(t, 1, s1.plans)
	assert.Equal(t, 1, s2.plans)
}

func TestObserver(t *testing.T) {
	sink := &recordSink{}
	log := &nopLog{}
	obs := NewObserver(sink, log)
	obs.ObserveSolve(context.Background(), okEvent())
	obs.ObserveSolve(context.Background(), scheduler.Event{Err: errors.New("x")})
	assert.Equal(t, 2, sink.solves)
	assert.Equal(t, 1, sink.plans)

	failing := NewObserver(&recordSink{err: errors.New("boom")}, log)
	failing.ObserveSolve(context.Background(), okEvent())
	assert.Equal(t, 2, log.warns)
}
