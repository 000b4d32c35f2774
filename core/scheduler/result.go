package scheduler

import "github.com/kilianp07/v2g-planner/core/model"

// Result is the solved schedule. Flow arrays carry one trailing zero so they
// line up with BatterySoC, which has Horizon+1 entries.
type Result struct {
	Mode    model.Mode `json:"mode"`
	Horizon int        `json:"horizon_hours"`

	SolarCharging   []float64      `json:"solar_charging"`
	GridCharging    []float64      `json:"grid_charging"`
	GridDischarging []float64      `json:"grid_discharging"`
	BatterySoC      []float64      `json:"battery_soc"`
	Actions         []model.Action `json:"actions"`

	NetCost          float64 `json:"net_cost"`
	CO2EmittedKg     float64 `json:"co2_emitted_kg"`
	CO2AvoidedKg     float64 `json:"co2_avoided_kg"`
	FilledByDeadline float64 `json:"filled_by_deadline"`
	// Objective is the optimized objective value: a cost in cost mode, a
	// profit in eco mode.
	Objective float64 `json:"objective"`
}

// Totals sums the energy moved over the horizon.
type Totals struct {
	SolarKWh      float64 `json:"solar_kwh"`
	GridKWh       float64 `json:"grid_kwh"`
	DischargedKWh float64 `json:"discharged_kwh"`
}

// Totals returns the energy drawn from solar and grid and sent back to the
// grid.
func (r Result) Totals() Totals {
	var t Totals
	for h := 0; h < r.Horizon; h++ {
		t.SolarKWh += r.SolarCharging[h]
		t.GridKWh += r.GridCharging[h]
		t.DischargedKWh += r.GridDischarging[h]
	}
	return t
}

// StartSoC returns the state of charge at hour 0.
func (r Result) StartSoC() float64 {
	if len(r.BatterySoC) == 0 {
		return 0
	}
	return r.BatterySoC[0]
}

// idleResult is the plan for an empty horizon.
func idleResult(in Input) Result {
	return Result{
		Mode:             in.Mode,
		Horizon:          0,
		SolarCharging:    []float64{0},
		GridCharging:     []float64{0},
		GridDischarging:  []float64{0},
		BatterySoC:       []float64{in.Params.InitialSoC},
		Actions:          []model.Action{},
		FilledByDeadline: in.Params.InitialSoC,
	}
}

// aggregate fills the derived cost and emission totals.
func (r *Result) aggregate(in Input) {
	p := in.Params
	r.NetCost, r.CO2EmittedKg, r.CO2AvoidedKg = 0, 0, 0
	for h := 0; h < in.Horizon; h++ {
		r.NetCost += r.GridCharging[h]*in.Price[h] - r.GridDischarging[h]*p.V2GSellPrice
		r.CO2EmittedKg += r.GridCharging[h] * p.EmissionFactor
		r.CO2AvoidedKg += r.SolarCharging[h] * p.EmissionFactor
	}
	r.FilledByDeadline = r.BatterySoC[in.Horizon]
}
