package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/v2g-planner/core/milp"
	"github.com/kilianp07/v2g-planner/core/model"
)

// snapTol is the magnitude below which solver output is reported as zero.
const snapTol = 1e-7

// Engine builds the charging model for an Input and solves it.
type Engine struct {
	solver    milp.Solver
	timeLimit time.Duration
	observers Observers
	now       func() time.Time
	newID     func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithSolver replaces the exact dynamic programming solver, for instance
// with milp.NewBranchAndBound.
func WithSolver(s milp.Solver) Option {
	return func(e *Engine) { e.solver = s }
}

// WithObserver registers observers notified once per Solve call.
func WithObserver(obs ...Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, obs...) }
}

// WithTimeLimit bounds each Solve call. Zero disables the limit.
func WithTimeLimit(d time.Duration) Option {
	return func(e *Engine) { e.timeLimit = d }
}

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an Engine. Unless WithSolver is given, models are solved by
// dynamic programming over the state of charge, which is exact and runs in
// milliseconds for multi-day horizons.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Solve computes the optimal hourly plan. Errors are *InvalidInputError,
// *InfeasibleError or *SolverError. Observers see every call, failed or not.
func (e *Engine) Solve(ctx context.Context, in Input) (Result, error) {
	start := e.now()
	res, stats, err := e.solve(ctx, in)
	ev := Event{
		ID:       e.newID(),
		Time:     start,
		Input:    in,
		Err:      err,
		Duration: e.now().Sub(start),
		Stats:    stats,
	}
	if err == nil {
		ev.Result = &res
	}
	e.observers.ObserveSolve(ctx, ev)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (e *Engine) solve(ctx context.Context, in Input) (Result, milp.Stats, error) {
	if err := in.Validate(); err != nil {
		return Result{}, milp.Stats{}, err
	}
	if in.Horizon == 0 {
		return idleResult(in), milp.Stats{}, nil
	}
	f, err := formulationFor(in.Mode)
	if err != nil {
		return Result{}, milp.Stats{}, err
	}
	m, vars := buildModel(in, f)
	solver := e.solver
	if solver == nil {
		solver = chainSolver{in: in, f: f, v: vars}
	}
	if e.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeLimit)
		defer cancel()
	}
	sol, err := solver.Solve(ctx, m)
	switch {
	case errors.Is(err, milp.ErrInfeasible):
		return Result{}, milp.Stats{}, &InfeasibleError{Reason: diagnose(in)}
	case err != nil:
		return Result{}, milp.Stats{}, &SolverError{Status: solverStatus(err), Err: err}
	case sol == nil || len(sol.X) != m.NumVars():
		return Result{}, milp.Stats{}, &SolverError{Status: "malformed", Err: fmt.Errorf("solution has wrong dimension for %d variables", m.NumVars())}
	}
	return extract(in, vars, sol), sol.Stats, nil
}

func extract(in Input, v *decisionVars, sol *milp.Solution) Result {
	n := in.Horizon
	p := in.Params
	r := Result{
		Mode:            in.Mode,
		Horizon:         n,
		SolarCharging:   make([]float64, n+1),
		GridCharging:    make([]float64, n+1),
		GridDischarging: make([]float64, n+1),
		BatterySoC:      make([]float64, n+1),
		Actions:         make([]model.Action, n),
		Objective:       sol.Objective,
	}
	for h := 0; h < n; h++ {
		r.SolarCharging[h] = clamp(sol.Value(v.solar[h]), in.Solar[h])
		r.GridCharging[h] = clamp(sol.Value(v.grid[h]), p.MaxChargeRate)
		r.GridDischarging[h] = clamp(sol.Value(v.discharge[h]), p.MaxDischargeRate)
		r.Actions[h] = chosen(sol, v, h)
	}
	for h := 0; h <= n; h++ {
		r.BatterySoC[h] = clamp(sol.Value(v.soc[h]), p.BatteryCapacity)
	}
	r.aggregate(in)
	return r
}

// clamp snaps solver noise to zero and keeps x inside [0, hi].
func clamp(x, hi float64) float64 {
	if math.Abs(x) < snapTol {
		return 0
	}
	if math.Abs(x-hi) < snapTol {
		return hi
	}
	return math.Max(0, math.Min(x, hi))
}

func chosen(sol *milp.Solution, v *decisionVars, h int) model.Action {
	switch {
	case sol.Value(v.actsSolar[h]) > 0.5:
		return model.ActionSolar
	case sol.Value(v.actsGrid[h]) > 0.5:
		return model.ActionGrid
	case sol.Value(v.actsDischarge[h]) > 0.5:
		return model.ActionDischarge
	default:
		return model.ActionIdle
	}
}

// diagnose explains the usual causes of infeasibility. An empty string means
// none of them applies.
func diagnose(in Input) string {
	p := in.Params
	target := in.TerminalEnergy()
	if target > p.BatteryCapacity {
		return fmt.Sprintf("terminal energy %g kWh exceeds battery capacity %g kWh", target, p.BatteryCapacity)
	}
	reach := p.InitialSoC
	for h := 0; h < in.Horizon; h++ {
		step := in.Solar[h]
		if in.Mode == model.ModeCost {
			step = math.Max(step, p.MaxChargeRate)
		}
		reach = math.Min(reach+step, p.BatteryCapacity)
	}
	if target > reach+snapTol {
		return fmt.Sprintf("terminal energy %g kWh not reachable in %d hours (at most %g kWh)", target, in.Horizon, reach)
	}
	if p.InitialSoC > target+snapTol {
		for h := 0; h < in.Horizon; h++ {
			if in.V2GAllowed(h) {
				return ""
			}
		}
		return fmt.Sprintf("initial energy %g kWh above target %g kWh and grid demand never allows discharging", p.InitialSoC, target)
	}
	return ""
}

func solverStatus(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "time_limit"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, milp.ErrNodeLimit):
		return "node_limit"
	case errors.Is(err, milp.ErrUnbounded):
		return "unbounded"
	case errors.Is(err, milp.ErrNumerical):
		return "numerical"
	default:
		return "error"
	}
}
