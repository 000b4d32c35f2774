package model

// Params is the flat configuration record of battery, tariff and emission
// parameters the planner is tuned with. Energy is in kWh, power in kW and
// money in the tariff currency.
type Params struct {
	BatteryCapacity  float64 `json:"battery_capacity" yaml:"battery_capacity"`
	MaxChargeRate    float64 `json:"max_charge_rate" yaml:"max_charge_rate"`
	MaxDischargeRate float64 `json:"max_discharge_rate" yaml:"max_discharge_rate"`
	InitialSoC       float64 `json:"initial_soc" yaml:"initial_soc"`

	// CycleDegradationCost is the wear cost of one full charge and
	// discharge cycle.
	CycleDegradationCost float64 `json:"cycle_degradation_cost" yaml:"cycle_degradation_cost"`
	// SwitchPenalty is charged for every hour spent discharging.
	SwitchPenalty float64 `json:"switch_penalty" yaml:"switch_penalty"`
	V2GSellPrice  float64 `json:"v2g_sell_price" yaml:"v2g_sell_price"`

	CO2PricePerKg  float64 `json:"co2_price_per_kg" yaml:"co2_price_per_kg"`
	EmissionFactor float64 `json:"emission_factor" yaml:"emission_factor"` // kg CO2 per kWh drawn from the grid

	// GridDemandThreshold is the grid load below which discharging is not
	// allowed.
	GridDemandThreshold float64 `json:"grid_demand_threshold" yaml:"grid_demand_threshold"`

	EnergyPerMile float64 `json:"energy_per_mile" yaml:"energy_per_mile"`

	// AllowIdle lets an hour take no action at all instead of forcing one of
	// solar, grid or discharge.
	AllowIdle bool `json:"allow_idle" yaml:"allow_idle"`
}

// DefaultParams returns the parameters of a 75 kWh car on an 11 kW
// bidirectional charger.
func DefaultParams() Params {
	return Params{
		BatteryCapacity:      75,
		MaxChargeRate:        11,
		MaxDischargeRate:     11,
		InitialSoC:           37.5,
		CycleDegradationCost: 1.0,
		SwitchPenalty:        0.05,
		V2GSellPrice:         0.10,
		CO2PricePerKg:        0,
		EmissionFactor:       0.233,
		GridDemandThreshold:  30000,
		EnergyPerMile:        0.25,
	}
}

// WearCost returns the degradation cost per kWh moved in or out.
func (p Params) WearCost() float64 {
	if p.BatteryCapacity <= 0 {
		return 0
	}
	return p.CycleDegradationCost / (2 * p.BatteryCapacity)
}

// CO2CostPerKWh returns the carbon cost of one kWh drawn from the grid.
func (p Params) CO2CostPerKWh() float64 { return p.CO2PricePerKg * p.EmissionFactor }

// RequiredEnergyForRange converts a driving range to the energy needed.
func (p Params) RequiredEnergyForRange(miles float64) float64 {
	return miles * p.EnergyPerMile
}
