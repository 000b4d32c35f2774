package milp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Options tunes BranchAndBound. Zero values fall back to DefaultOptions.
type Options struct {
	// MaxNodes bounds the number of relaxations solved. Negative disables
	// the limit.
	MaxNodes int
	// TimeLimit bounds the wall time of one Solve call. Zero disables it.
	TimeLimit time.Duration
	// IntTolerance is the distance to an integer accepted as integral.
	IntTolerance float64
	// LPTolerance is passed to the simplex as the reduced cost tolerance.
	LPTolerance float64
}

// DefaultOptions returns the settings used when none are given.
func DefaultOptions() Options {
	return Options{MaxNodes: 50000, IntTolerance: 1e-6, LPTolerance: 1e-9}
}

// BranchAndBound is a branch-and-bound MIP solver. It dives depth-first
// until a first incumbent exists and then always expands the open node with
// the lowest bound. Each node relaxation is presolved and handed to gonum's
// simplex. It holds no state between calls and may be shared.
type BranchAndBound struct {
	opts Options
}

// NewBranchAndBound returns a solver configured by opts.
func NewBranchAndBound(opts Options) *BranchAndBound {
	def := DefaultOptions()
	if opts.MaxNodes == 0 {
		opts.MaxNodes = def.MaxNodes
	}
	if opts.IntTolerance <= 0 {
		opts.IntTolerance = def.IntTolerance
	}
	if opts.LPTolerance <= 0 {
		opts.LPTolerance = def.LPTolerance
	}
	return &BranchAndBound{opts: opts}
}

type node struct {
	lb, ub []float64
	// bound is the relaxation value of the parent.
	bound float64
}

// Solve returns an optimal solution of m, ErrInfeasible when none exists,
// or another error when the search could not complete.
func (s *BranchAndBound) Solve(ctx context.Context, m *Model) (*Solution, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	if s.opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TimeLimit)
		defer cancel()
	}
	start := time.Now()
	c := m.minimizeCosts()

	root := node{
		lb:    make([]float64, len(m.vars)),
		ub:    make([]float64, len(m.vars)),
		bound: math.Inf(-1),
	}
	for j, v := range m.vars {
		root.lb[j], root.ub[j] = v.lb, v.ub
	}

	var (
		stats   Stats
		best    []float64
		bestVal = math.Inf(1)
	)
	open := []node{root}
	for len(open) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("milp: search stopped after %d nodes: %w", stats.Nodes, err)
		}
		if s.opts.MaxNodes > 0 && stats.Nodes >= s.opts.MaxNodes {
			return nil, fmt.Errorf("%w (%d)", ErrNodeLimit, stats.Nodes)
		}
		var nd node
		nd, open = pop(open, best == nil)
		if nd.bound >= bestVal-gap(bestVal) {
			stats.Pruned++
			continue
		}
		stats.Nodes++

		x, err := s.relax(m, c, nd.lb, nd.ub)
		stats.Relaxations++
		if errors.Is(err, ErrInfeasible) {
			stats.Pruned++
			continue
		}
		if err != nil {
			return nil, err
		}
		val := dot(c, x)
		if val >= bestVal-gap(bestVal) {
			stats.Pruned++
			continue
		}

		j := s.branchVar(m, x)
		if j < 0 {
			best, bestVal = x, val
			stats.Incumbents++
			continue
		}
		f := x[j]
		down := node{lb: nd.lb, ub: append([]float64(nil), nd.ub...), bound: val}
		down.ub[j] = math.Floor(f)
		up := node{lb: append([]float64(nil), nd.lb...), ub: nd.ub, bound: val}
		up.lb[j] = math.Ceil(f)
		// the side closer to the relaxation is explored first
		if f-math.Floor(f) < 0.5 {
			open = append(open, up, down)
		} else {
			open = append(open, down, up)
		}
	}
	if best == nil {
		return nil, ErrInfeasible
	}
	for j, v := range m.vars {
		if v.integer {
			best[j] = math.Round(best[j])
		}
	}
	stats.Elapsed = time.Since(start)
	return &Solution{X: best, Objective: m.Evaluate(best), Stats: stats}, nil
}

// pop removes the next node to expand: the newest while diving, otherwise
// the one with the lowest bound.
func pop(open []node, dive bool) (node, []node) {
	k := len(open) - 1
	if !dive {
		for i := range open {
			if open[i].bound < open[k].bound {
				k = i
			}
		}
	}
	nd := open[k]
	last := len(open) - 1
	open[k] = open[last]
	return nd, open[:last]
}

func (s *BranchAndBound) relax(m *Model, c, lb, ub []float64) ([]float64, error) {
	r, err := presolve(m, lb, ub, s.opts.IntTolerance)
	if err != nil {
		return nil, err
	}
	return r.solve(c, s.opts.LPTolerance)
}

// branchVar picks the most fractional integer variable, or -1 when x is
// integral.
func (s *BranchAndBound) branchVar(m *Model, x []float64) int {
	pick, worst := -1, s.opts.IntTolerance
	for j, v := range m.vars {
		if !v.integer {
			continue
		}
		frac := x[j] - math.Floor(x[j])
		if d := math.Min(frac, 1-frac); d > worst {
			pick, worst = j, d
		}
	}
	return pick
}

func gap(v float64) float64 {
	if math.IsInf(v, 0) {
		return 0
	}
	return 1e-9 * math.Max(1, math.Abs(v))
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
