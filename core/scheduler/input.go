package scheduler

import (
	"math"

	"github.com/kilianp07/v2g-planner/core/model"
)

// Input is everything one optimization needs. Build it with NewInput; it is
// not modified by Solve.
type Input struct {
	// Horizon is the number of optimized hours: the requested deadline
	// bounded by the forecast length.
	Horizon int `json:"horizon_hours"`

	Solar  []float64 `json:"solar_forecast"`
	Price  []float64 `json:"grid_price"`
	Demand []float64 `json:"grid_demand"`

	// RequiredEnergy is the target state of charge at the deadline in cost
	// mode. Eco mode returns to Params.InitialSoC instead.
	RequiredEnergy float64 `json:"required_energy"`
	// DeadlineHour equals Horizon, the last index of the simulated window.
	DeadlineHour int `json:"deadline_hour"`
	// RequestedDeadline is the deadline asked for before truncation.
	RequestedDeadline int `json:"requested_deadline"`

	Mode   model.Mode   `json:"mode"`
	Params model.Params `json:"params"`
}

// NewInput truncates the forecast to min(deadline, forecast length) hours and
// validates the result. A negative deadline yields an empty horizon.
func NewInput(f model.Forecast, p model.Params, mode model.Mode, deadline int, requiredEnergy float64) (Input, error) {
	h := deadline
	if n := f.Len(); n < h {
		h = n
	}
	if h < 0 {
		h = 0
	}
	in := Input{
		Horizon:           h,
		Solar:             append([]float64(nil), f.Solar[:h]...),
		Price:             append([]float64(nil), f.Price[:h]...),
		Demand:            append([]float64(nil), f.Demand[:h]...),
		RequiredEnergy:    requiredEnergy,
		DeadlineHour:      h,
		RequestedDeadline: deadline,
		Mode:              mode,
		Params:            p,
	}
	if err := in.Validate(); err != nil {
		return Input{}, err
	}
	return in, nil
}

// Validate checks the scalar parameters and the forecast arrays.
//
//gocyclo:ignore
func (in Input) Validate() error {
	p := in.Params
	if in.Horizon < 0 {
		return invalid("horizon_hours", "must be >= 0, got %d", in.Horizon)
	}
	if in.Mode != model.ModeCost && in.Mode != model.ModeEco {
		return invalid("mode", "unknown mode %d", int(in.Mode))
	}
	scalars := []struct {
		name string
		v    float64
	}{
		{"battery_capacity", p.BatteryCapacity},
		{"max_charge_rate", p.MaxChargeRate},
		{"max_discharge_rate", p.MaxDischargeRate},
		{"initial_soc", p.InitialSoC},
		{"cycle_degradation_cost", p.CycleDegradationCost},
		{"switch_penalty", p.SwitchPenalty},
		{"co2_price_per_kg", p.CO2PricePerKg},
		{"emission_factor", p.EmissionFactor},
		{"required_energy", in.RequiredEnergy},
	}
	for _, s := range scalars {
		if math.IsNaN(s.v) || math.IsInf(s.v, 0) {
			return invalid(s.name, "must be finite")
		}
		if s.v < 0 {
			return invalid(s.name, "must be >= 0, got %g", s.v)
		}
	}
	if math.IsNaN(p.V2GSellPrice) || math.IsInf(p.V2GSellPrice, 0) {
		return invalid("v2g_sell_price", "must be finite")
	}
	if math.IsNaN(p.GridDemandThreshold) || math.IsInf(p.GridDemandThreshold, 0) {
		return invalid("grid_demand_threshold", "must be finite")
	}
	if p.BatteryCapacity == 0 {
		return invalid("battery_capacity", "must be > 0")
	}
	if p.InitialSoC > p.BatteryCapacity {
		return invalid("initial_soc", "%g exceeds battery capacity %g", p.InitialSoC, p.BatteryCapacity)
	}
	if len(in.Solar) < in.Horizon || len(in.Price) < in.Horizon || len(in.Demand) < in.Horizon {
		return invalid("forecast", "shorter than the %d hour horizon", in.Horizon)
	}
	for h := 0; h < in.Horizon; h++ {
		if math.IsNaN(in.Solar[h]) || math.IsInf(in.Solar[h], 0) || in.Solar[h] < 0 {
			return invalid("solar_forecast", "hour %d must be finite and >= 0, got %g", h, in.Solar[h])
		}
		if math.IsNaN(in.Price[h]) || math.IsInf(in.Price[h], 0) {
			return invalid("grid_price", "hour %d must be finite", h)
		}
		if math.IsNaN(in.Demand[h]) || math.IsInf(in.Demand[h], 0) {
			return invalid("grid_demand", "hour %d must be finite", h)
		}
	}
	return nil
}

// TerminalEnergy is the state of charge the plan must end with.
func (in Input) TerminalEnergy() float64 {
	if in.Mode == model.ModeEco {
		return in.Params.InitialSoC
	}
	return in.RequiredEnergy
}

// V2GAllowed reports whether grid demand permits discharging in hour h.
func (in Input) V2GAllowed(h int) bool {
	return in.Demand[h] >= in.Params.GridDemandThreshold
}
