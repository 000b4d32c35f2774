package milp

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInfeasible indicates that no assignment satisfies the model.
	ErrInfeasible = errors.New("milp: infeasible")
	// ErrUnbounded indicates that the objective can be improved without limit.
	ErrUnbounded = errors.New("milp: unbounded")
	// ErrNodeLimit indicates the search stopped before proving optimality.
	ErrNodeLimit = errors.New("milp: node limit reached")
	// ErrNumerical wraps failures of the LP solver itself.
	ErrNumerical = errors.New("milp: numerical failure")
)

// Solver finds an optimal assignment for a Model.
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, m *Model) (*Solution, error)

// Solve calls f.
func (f SolverFunc) Solve(ctx context.Context, m *Model) (*Solution, error) { return f(ctx, m) }

// Stats describes the work done by a solve. Solvers that do not branch
// report the size of their search in Nodes.
type Stats struct {
	Nodes       int           `json:"nodes"`
	Relaxations int           `json:"relaxations"`
	Pruned      int           `json:"pruned"`
	Incumbents  int           `json:"incumbents"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Solution is an optimal assignment.
type Solution struct {
	X         []float64
	Objective float64
	Stats     Stats
}

// Value returns the value assigned to v.
func (s *Solution) Value(v Var) float64 { return s.X[v] }

// Values returns the values assigned to vs.
func (s *Solution) Values(vs []Var) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = s.X[v]
	}
	return out
}
