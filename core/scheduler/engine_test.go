package scheduler

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/v2g-planner/core/milp"
	"github.com/kilianp07/v2g-planner/core/model"
)

func smallParams() model.Params {
	p := model.DefaultParams()
	p.BatteryCapacity = 10
	p.MaxChargeRate = 5
	p.MaxDischargeRate = 5
	p.InitialSoC = 0
	return p
}

func forecast(solar, price, demand []float64) model.Forecast {
	return model.Forecast{Solar: solar, Price: price, Demand: demand}
}

func mustInput(t *testing.T, f model.Forecast, p model.Params, mode model.Mode, deadline int, required float64) Input {
	t.Helper()
	in, err := NewInput(f, p, mode, deadline, required)
	require.NoError(t, err)
	return in
}

func assertPhysical(t *testing.T, in Input, r Result) {
	t.Helper()
	require.Len(t, r.BatterySoC, in.Horizon+1)
	require.Len(t, r.SolarCharging, in.Horizon+1)
	assert.InDelta(t, in.Params.InitialSoC, r.BatterySoC[0], 1e-6)
	assert.InDelta(t, in.TerminalEnergy(), r.BatterySoC[in.Horizon], 1e-6)
	for h := 0; h < in.Horizon; h++ {
		s, g, d := r.SolarCharging[h], r.GridCharging[h], r.GridDischarging[h]
		assert.InDelta(t, r.BatterySoC[h]+s+g-d, r.BatterySoC[h+1], 1e-6, "balance hour %d", h)
		nonzero := 0
		for _, x := range []float64{s, g, d} {
			if x > 0 {
				nonzero++
			}
		}
		assert.LessOrEqual(t, nonzero, 1, "hour %d mixes actions", h)
		assert.LessOrEqual(t, s, in.Solar[h]+1e-9)
		if d > 0 {
			assert.True(t, in.V2GAllowed(h), "discharge at hour %d below demand threshold", h)
		}
	}
	for _, soc := range r.BatterySoC {
		assert.GreaterOrEqual(t, soc, 0.0)
		assert.LessOrEqual(t, soc, in.Params.BatteryCapacity)
	}
}

func TestEngine_CostModePrefersSolar(t *testing.T) {
	in := mustInput(t, forecast(
		[]float64{0, 5, 0},
		[]float64{0.3, 0.1, 0.3},
		[]float64{40000, 40000, 40000},
	), smallParams(), model.ModeCost, 3, 5)

	r, err := New().Solve(context.Background(), in)
	require.NoError(t, err)
	assertPhysical(t, in, r)

	assert.InDeltaSlice(t, []float64{0, 5, 0, 0}, r.SolarCharging, 1e-6)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0}, r.GridCharging, 1e-6)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0}, r.GridDischarging, 1e-6)
	assert.InDeltaSlice(t, []float64{0, 0, 5, 5}, r.BatterySoC, 1e-6)
	assert.Equal(t, model.ActionSolar, r.Actions[1])
	assert.InDelta(t, 0, r.NetCost, 1e-9)
	assert.InDelta(t, 0, r.CO2EmittedKg, 1e-9)
	assert.InDelta(t, 5*0.233, r.CO2AvoidedKg, 1e-6)
	assert.InDelta(t, 5, r.FilledByDeadline, 1e-6)
	// wear of 5 kWh at 1/(2*10) per kWh
	assert.InDelta(t, 0.25, r.Objective, 1e-6)
}

func TestEngine_CostModeBuysCheapestHours(t *testing.T) {
	p := smallParams()
	p.CycleDegradationCost = 0
	in := mustInput(t, forecast(
		[]float64{0, 0, 0, 0},
		[]float64{0.4, 0.1, 0.3, 0.2},
		[]float64{0, 0, 0, 0},
	), p, model.ModeCost, 4, 8)

	r, err := New().Solve(context.Background(), in)
	require.NoError(t, err)
	assertPhysical(t, in, r)

	assert.InDeltaSlice(t, []float64{0, 5, 0, 3, 0}, r.GridCharging, 1e-6)
	assert.InDelta(t, 5*0.1+3*0.2, r.NetCost, 1e-6)
	assert.InDelta(t, 8*0.233, r.CO2EmittedKg, 1e-6)
}

func TestEngine_Infeasible(t *testing.T) {
	in := mustInput(t, forecast(
		[]float64{0, 5, 0},
		[]float64{0.3, 0.1, 0.3},
		[]float64{40000, 40000, 40000},
	), smallParams(), model.ModeCost, 3, 20)

	_, err := New().Solve(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInfeasible))
	var ie *InfeasibleError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Reason, "exceeds battery capacity")
}

func TestEngine_UnreachableTarget(t *testing.T) {
	p := smallParams()
	p.MaxChargeRate = 1
	in := mustInput(t, forecast(
		[]float64{0, 0},
		[]float64{0.1, 0.1},
		[]float64{0, 0},
	), p, model.ModeCost, 2, 5)

	_, err := New().Solve(context.Background(), in)
	require.ErrorIs(t, err, ErrInfeasible)
	assert.Contains(t, err.Error(), "not reachable")
}

func TestEngine_EcoModeArbitrage(t *testing.T) {
	p := smallParams()
	p.InitialSoC = 5
	p.CycleDegradationCost = 0
	p.V2GSellPrice = 0.5
	in := mustInput(t, forecast(
		[]float64{5, 0, 0},
		[]float64{0.01, 0.01, 0.01},
		[]float64{40000, 40000, 10000},
	), p, model.ModeEco, 3, 0)

	r, err := New().Solve(context.Background(), in)
	require.NoError(t, err)
	assertPhysical(t, in, r)

	for h := range r.GridCharging {
		assert.Zero(t, r.GridCharging[h], "grid charging in eco mode at hour %d", h)
	}
	assert.InDeltaSlice(t, []float64{5, 0, 0, 0}, r.SolarCharging, 1e-6)
	assert.InDeltaSlice(t, []float64{0, 5, 0, 0}, r.GridDischarging, 1e-6)
	assert.InDeltaSlice(t, []float64{5, 10, 5, 5}, r.BatterySoC, 1e-6)
	assert.InDelta(t, -2.5, r.NetCost, 1e-6)
	assert.InDelta(t, 2.45, r.Objective, 1e-6)
	assert.Equal(t, model.ModeEco, r.Mode)
}

func TestEngine_DemandGatesDischarge(t *testing.T) {
	p := smallParams()
	p.BatteryCapacity = 20
	p.InitialSoC = 10
	p.V2GSellPrice = 10
	in := mustInput(t, forecast(
		[]float64{0, 0, 0},
		[]float64{0.01, 0.01, 0.01},
		[]float64{100, 29999, 0},
	), p, model.ModeCost, 3, 10)

	r, err := New().Solve(context.Background(), in)
	require.NoError(t, err)
	assertPhysical(t, in, r)
	for h := 0; h < in.Horizon; h++ {
		assert.Zero(t, r.GridDischarging[h])
		assert.NotEqual(t, model.ActionDischarge, r.Actions[h])
	}
}

func TestEngine_DischargeWhenProfitable(t *testing.T) {
	p := smallParams()
	p.BatteryCapacity = 20
	p.InitialSoC = 10
	p.V2GSellPrice = 1
	p.CycleDegradationCost = 0
	in := mustInput(t, forecast(
		[]float64{0, 0, 0},
		[]float64{0.05, 0.05, 0.05},
		[]float64{50000, 50000, 50000},
	), p, model.ModeCost, 3, 10)

	r, err := New().Solve(context.Background(), in)
	require.NoError(t, err)
	assertPhysical(t, in, r)
	assert.InDelta(t, 5, r.Totals().DischargedKWh, 1e-6)
	assert.InDelta(t, 5, r.Totals().GridKWh, 1e-6)
	assert.Less(t, r.NetCost, 0.0)
}

func TestEngine_EmptyHorizon(t *testing.T) {
	calls := 0
	solver := milp.SolverFunc(func(context.Context, *milp.Model) (*milp.Solution, error) {
		calls++
		return nil, errors.New("unexpected")
	})
	var events []Event
	eng := New(WithSolver(solver), WithObserver(ObserverFunc(func(_ context.Context, ev Event) {
		events = append(events, ev)
	})))

	p := smallParams()
	p.InitialSoC = 3
	in := mustInput(t, forecast([]float64{1}, []float64{1}, []float64{1}), p, model.ModeCost, 0, 0)
	r, err := eng.Solve(context.Background(), in)
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Equal(t, 0, r.Horizon)
	assert.Equal(t, []float64{3}, r.BatterySoC)
	assert.Equal(t, []float64{0}, r.SolarCharging)
	assert.Equal(t, 0.0, r.NetCost)
	assert.Equal(t, 3.0, r.FilledByDeadline)
	require.Len(t, events, 1)
	assert.Equal(t, "empty", events[0].Status())
}

func TestEngine_InvalidInput(t *testing.T) {
	p := smallParams()
	p.InitialSoC = 11
	_, err := NewInput(forecast([]float64{0}, []float64{0}, []float64{0}), p, model.ModeCost, 1, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
	var ie *InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "initial_soc", ie.Field)

	in := Input{
		Horizon: 1,
		Solar:   []float64{0},
		Price:   []float64{math.NaN()},
		Demand:  []float64{0},
		Params:  smallParams(),
	}
	var seen []Event
	eng := New(WithObserver(ObserverFunc(func(_ context.Context, ev Event) { seen = append(seen, ev) })))
	_, err = eng.Solve(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Len(t, seen, 1)
	assert.Equal(t, "invalid_input", seen[0].Status())
	assert.Nil(t, seen[0].Result)
}

func TestNewInput_TruncatesToForecast(t *testing.T) {
	in := mustInput(t, forecast(
		[]float64{1, 2, 3},
		[]float64{1, 1, 1},
		[]float64{1, 1, 1},
	), smallParams(), model.ModeCost, 10, 0)
	assert.Equal(t, 3, in.Horizon)
	assert.Equal(t, 3, in.DeadlineHour)
	assert.Equal(t, 10, in.RequestedDeadline)

	in = mustInput(t, forecast([]float64{1, 2}, []float64{1, 1}, []float64{1, 1}), smallParams(), model.ModeCost, -4, 0)
	assert.Equal(t, 0, in.Horizon)
}

func TestEngine_SolverErrorsAreMapped(t *testing.T) {
	in := mustInput(t, forecast([]float64{1}, []float64{1}, []float64{1}), smallParams(), model.ModeCost, 1, 0)

	tests := []struct {
		name     string
		solveErr error
		target   error
		status   string
	}{
		{"infeasible", milp.ErrInfeasible, ErrInfeasible, ""},
		{"node limit", milp.ErrNodeLimit, ErrSolver, "node_limit"},
		{"numerical", milp.ErrNumerical, ErrSolver, "numerical"},
		{"deadline", context.DeadlineExceeded, ErrSolver, "time_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := New(WithSolver(milp.SolverFunc(func(context.Context, *milp.Model) (*milp.Solution, error) {
				return nil, tt.solveErr
			})))
			_, err := eng.Solve(context.Background(), in)
			require.ErrorIs(t, err, tt.target)
			var se *SolverError
			if errors.As(err, &se) {
				assert.Equal(t, tt.status, se.Status)
				assert.ErrorIs(t, err, tt.solveErr)
			}
		})
	}
}

func TestEngine_MalformedSolution(t *testing.T) {
	in := mustInput(t, forecast([]float64{1}, []float64{1}, []float64{1}), smallParams(), model.ModeCost, 1, 0)
	eng := New(WithSolver(milp.SolverFunc(func(context.Context, *milp.Model) (*milp.Solution, error) {
		return &milp.Solution{X: []float64{1}}, nil
	})))
	_, err := eng.Solve(context.Background(), in)
	var se *SolverError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "malformed", se.Status)
}

func TestEngine_CancelledContext(t *testing.T) {
	in := mustInput(t, forecast(
		[]float64{0, 5, 0},
		[]float64{0.3, 0.1, 0.3},
		[]float64{40000, 40000, 40000},
	), smallParams(), model.ModeCost, 3, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Solve(ctx, in)
	var se *SolverError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "cancelled", se.Status)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_ObserverSeesEveryCall(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var events []Event
	eng := New(
		WithClock(func() time.Time { return fixed }),
		WithObserver(ObserverFunc(func(_ context.Context, ev Event) { events = append(events, ev) })),
	)
	ok := mustInput(t, forecast([]float64{0, 5}, []float64{1, 1}, []float64{0, 0}), smallParams(), model.ModeCost, 2, 5)
	bad := mustInput(t, forecast([]float64{0}, []float64{1}, []float64{0}), smallParams(), model.ModeCost, 1, 9)

	_, err := eng.Solve(context.Background(), ok)
	require.NoError(t, err)
	_, err = eng.Solve(context.Background(), bad)
	require.Error(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "optimal", events[0].Status())
	require.NotNil(t, events[0].Result)
	assert.Equal(t, fixed, events[0].Time)
	assert.Greater(t, events[0].Stats.Nodes, 0)
	assert.Equal(t, "infeasible", events[1].Status())
	assert.NotEqual(t, events[0].ID, events[1].ID)
}
