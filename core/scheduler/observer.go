package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/v2g-planner/core/logger"
	"github.com/kilianp07/v2g-planner/core/milp"
)

// Event describes one Solve call.
type Event struct {
	ID       string
	Time     time.Time
	Input    Input
	Result   *Result
	Err      error
	Duration time.Duration
	Stats    milp.Stats
}

// Status summarizes the outcome of the solve.
func (ev Event) Status() string {
	switch {
	case ev.Err == nil && ev.Input.Horizon == 0:
		return "empty"
	case ev.Err == nil:
		return "optimal"
	case errors.Is(ev.Err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(ev.Err, ErrInfeasible):
		return "infeasible"
	default:
		return "solver_error"
	}
}

// Observer receives solve events. Implementations must not block for long;
// they run on the caller's goroutine.
type Observer interface {
	ObserveSolve(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) ObserveSolve(ctx context.Context, ev Event) { f(ctx, ev) }

// Observers fans an event out in order.
type Observers []Observer

func (o Observers) ObserveSolve(ctx context.Context, ev Event) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveSolve(ctx, ev)
		}
	}
}

// LogObserver logs inputs and outputs at debug level and a one line summary.
type LogObserver struct {
	log logger.Logger
}

func NewLogObserver(l logger.Logger) *LogObserver { return &LogObserver{log: l} }

func (o *LogObserver) ObserveSolve(_ context.Context, ev Event) {
	in := ev.Input
	o.log.Debugw("optimiser inputs", map[string]any{
		"solve_id":        ev.ID,
		"mode":            in.Mode.String(),
		"horizon":         in.Horizon,
		"solar":           in.Solar,
		"price":           in.Price,
		"demand":          in.Demand,
		"required_energy": in.RequiredEnergy,
		"initial_soc":     in.Params.InitialSoC,
	})
	if ev.Err != nil {
		o.log.Warnf("solve %s %s: %v", ev.ID, ev.Status(), ev.Err)
		return
	}
	r := ev.Result
	o.log.Debugw("optimiser outputs", map[string]any{
		"solve_id":         ev.ID,
		"solar_charging":   r.SolarCharging,
		"grid_charging":    r.GridCharging,
		"grid_discharging": r.GridDischarging,
		"battery_soc":      r.BatterySoC,
	})
	o.log.Infof("solve %s %s mode: horizon=%d net_cost=%.2f final_soc=%.2f nodes=%d took=%s",
		ev.ID, in.Mode, in.Horizon, r.NetCost, r.FilledByDeadline, ev.Stats.Nodes, ev.Duration)
}
