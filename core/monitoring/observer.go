package monitoring

import (
	"context"
	"errors"

	"github.com/kilianp07/v2g-planner/core/scheduler"
)

// SolveObserver reports solver failures to the global monitor. Invalid input
// and infeasible requests are caller errors and are not captured.
type SolveObserver struct{}

func (SolveObserver) ObserveSolve(_ context.Context, ev scheduler.Event) {
	var se *scheduler.SolverError
	if !errors.As(ev.Err, &se) {
		return
	}
	CaptureException(ev.Err, map[string]string{
		"module":   "scheduler",
		"mode":     ev.Input.Mode.String(),
		"status":   se.Status,
		"solve_id": ev.ID,
	})
}
