package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput matches any *InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInfeasible matches any *InfeasibleError.
	ErrInfeasible = errors.New("infeasible schedule")
	// ErrSolver matches any *SolverError.
	ErrSolver = errors.New("solver failure")
)

// InvalidInputError reports a malformed or out of range parameter. It is
// returned before any model is built.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidInput) work.
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// InfeasibleError reports that no schedule satisfies every constraint.
type InfeasibleError struct {
	Reason string
}

func (e *InfeasibleError) Error() string {
	if e.Reason == "" {
		return "infeasible schedule"
	}
	return "infeasible schedule: " + e.Reason
}

// Is makes errors.Is(err, ErrInfeasible) work.
func (e *InfeasibleError) Is(target error) bool { return target == ErrInfeasible }

// SolverError reports a solve that ended without an optimal or infeasible
// verdict, for instance a numerical failure or an exhausted time budget.
type SolverError struct {
	Status string
	Err    error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver failed (%s): %v", e.Status, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSolver) work.
func (e *SolverError) Is(target error) bool { return target == ErrSolver }

func invalid(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
