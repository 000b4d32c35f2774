package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/v2g-planner/core/milp"
)

const (
	// AlgorithmDP solves the charging model by dynamic programming over the
	// state of charge.
	AlgorithmDP = "dp"
	// AlgorithmBranchAndBound uses the generic MILP solver.
	AlgorithmBranchAndBound = "branch_and_bound"

	defaultTimeLimitMS = 5000
)

// SolverConfig selects and tunes the solver.
type SolverConfig struct {
	Algorithm string `json:"algorithm"`
	// TimeLimitMS bounds one solve.
	TimeLimitMS  int     `json:"time_limit_ms"`
	MaxNodes     int     `json:"max_nodes"`
	IntTolerance float64 `json:"int_tolerance"`
	LPTolerance  float64 `json:"lp_tolerance"`
}

func (c *SolverConfig) SetDefaults() {
	d := milp.DefaultOptions()
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmDP
	}
	if c.TimeLimitMS == 0 {
		c.TimeLimitMS = defaultTimeLimitMS
	}
	if c.MaxNodes == 0 {
		c.MaxNodes = d.MaxNodes
	}
	if c.IntTolerance == 0 {
		c.IntTolerance = d.IntTolerance
	}
	if c.LPTolerance == 0 {
		c.LPTolerance = d.LPTolerance
	}
}

func (c SolverConfig) Validate() error {
	switch c.Algorithm {
	case AlgorithmDP, AlgorithmBranchAndBound:
	default:
		return fmt.Errorf("solver.algorithm must be %q or %q, got %q", AlgorithmDP, AlgorithmBranchAndBound, c.Algorithm)
	}
	if c.TimeLimitMS <= 0 {
		return fmt.Errorf("solver.time_limit_ms must be positive")
	}
	if c.IntTolerance < 0 || c.IntTolerance >= 0.5 {
		return fmt.Errorf("solver.int_tolerance must lie in [0, 0.5)")
	}
	return nil
}

// TimeLimit is the wall time budget of one solve.
func (c SolverConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitMS) * time.Millisecond
}

// Options converts the section to branch-and-bound options.
func (c SolverConfig) Options() milp.Options {
	return milp.Options{
		MaxNodes:     c.MaxNodes,
		TimeLimit:    c.TimeLimit(),
		IntTolerance: c.IntTolerance,
		LPTolerance:  c.LPTolerance,
	}
}
