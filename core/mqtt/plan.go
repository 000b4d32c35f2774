// Package mqtt defines how solved plans are announced to the charger side
// over MQTT. The Paho implementation lives in infra/mqtt.
package mqtt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/v2g-planner/core/logger"
	"github.com/kilianp07/v2g-planner/core/scheduler"
)

// ErrPublish is returned when a plan could not be delivered after all retries.
var ErrPublish = errors.New("mqtt publish failed")

// PlanStep is one hour of a published plan.
type PlanStep struct {
	Hour        int     `json:"hour"`
	Action      string  `json:"action"`
	SolarKW     float64 `json:"solar_kw"`
	GridKW      float64 `json:"grid_kw"`
	DischargeKW float64 `json:"discharge_kw"`
	SoCKWh      float64 `json:"soc_kwh"`
}

// PlanMessage is the JSON payload sent for every solved plan.
type PlanMessage struct {
	MessageID string     `json:"message_id"`
	SolveID   string     `json:"solve_id"`
	Mode      string     `json:"mode"`
	Generated time.Time  `json:"generated"`
	NetCost   float64    `json:"net_cost"`
	FinalSoC  float64    `json:"final_soc"`
	Steps     []PlanStep `json:"steps"`
}

// NewPlanMessage builds the payload for a successful solve event.
func NewPlanMessage(ev scheduler.Event) PlanMessage {
	r := ev.Result
	msg := PlanMessage{
		MessageID: uuid.NewString(),
		SolveID:   ev.ID,
		Mode:      r.Mode.String(),
		Generated: ev.Time,
		NetCost:   r.NetCost,
		FinalSoC:  r.FilledByDeadline,
		Steps:     make([]PlanStep, r.Horizon),
	}
	for h := range msg.Steps {
		msg.Steps[h] = PlanStep{
			Hour:        h,
			Action:      r.Actions[h].String(),
			SolarKW:     r.SolarCharging[h],
			GridKW:      r.GridCharging[h],
			DischargeKW: r.GridDischarging[h],
			SoCKWh:      r.BatterySoC[h+1],
		}
	}
	return msg
}

// PlanPublisher sends plans to a broker.
type PlanPublisher interface {
	PublishPlan(ctx context.Context, msg PlanMessage) error
}

// Observer publishes every non empty plan. Failed solves are not published.
type Observer struct {
	pub PlanPublisher
	log logger.Logger
}

func NewObserver(pub PlanPublisher, log logger.Logger) *Observer {
	return &Observer{pub: pub, log: log}
}

func (o *Observer) ObserveSolve(ctx context.Context, ev scheduler.Event) {
	if ev.Result == nil || ev.Result.Horizon == 0 {
		return
	}
	if err := o.pub.PublishPlan(ctx, NewPlanMessage(ev)); err != nil {
		o.log.Errorf("publish plan %s: %v", ev.ID, err)
	}
}
