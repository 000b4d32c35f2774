package mqtt

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

type capturePublisher struct {
	msgs []PlanMessage
	err  error
}

func (c *capturePublisher) PublishPlan(_ context.Context, msg PlanMessage) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

type errLogger struct{ errs int }

func (*errLogger) Debugf(string, ...any)         {}
func (*errLogger) Debugw(string, map[string]any) {}
func (*errLogger) Infof(string, ...any)          {}
func (*errLogger) Warnf(string, ...any)          {}
func (l *errLogger) Errorf(string, ...any)       { l.errs++ }

func solvedEvent() scheduler.Event {
	return scheduler.Event{
		ID:   "solve-1",
		Time: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
		Result: &scheduler.Result{
			Mode:             model.ModeCost,
			Horizon:          2,
			SolarCharging:    []float64{0, 3, 0},
			GridCharging:     []float64{5, 0, 0},
			GridDischarging:  []float64{0, 0, 0},
			BatterySoC:       []float64{0, 5, 8},
			Actions:          []model.Action{model.ActionGrid, model.ActionSolar},
			NetCost:          1.5,
			FilledByDeadline: 8,
		},
	}
}

func TestNewPlanMessage(t *testing.T) {
	msg := NewPlanMessage(solvedEvent())
	assert.NotEmpty(t, msg.MessageID)
	assert.Equal(t, "solve-1", msg.SolveID)
	assert.Equal(t, "cost", msg.Mode)
	assert.InDelta(t, 8.0, msg.FinalSoC, 1e-9)
	require.Len(t, msg.Steps, 2)
	assert.Equal(t, PlanStep{Hour: 0, Action: "grid", GridKW: 5, SoCKWh: 5}, msg.Steps[0])
	assert.Equal(t, PlanStep{Hour: 1, Action: "solar", SolarKW: 3, SoCKWh: 8}, msg.Steps[1])
}

func TestObserverSkipsFailedAndEmpty(t *testing.T) {
	pub := &capturePublisher{}
	obs := NewObserver(pub, &errLogger{})

	obs.ObserveSolve(context.Background(), scheduler.Event{Err: errors.New("boom")})
	obs.ObserveSolve(context.Background(), scheduler.Event{Result: &scheduler.Result{}})
	assert.Empty(t, pub.msgs)

	obs.ObserveSolve(context.Background(), solvedEvent())
	assert.Len(t, pub.msgs, 1)
}

func TestObserverLogsPublishFailure(t *testing.T) {
	log := &errLogger{}
	obs := NewObserver(&capturePublisher{err: ErrPublish}, log)
	obs.ObserveSolve(context.Background(), solvedEvent())
	assert.Equal(t, 1, log.errs)
}
