package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/v2g-planner/core/model"
)

// BatteryDef overrides the default parameters. Unset fields keep defaults.
type BatteryDef struct {
	Capacity             *float64 `yaml:"battery_capacity"`
	MaxChargeRate        *float64 `yaml:"max_charge_rate"`
	MaxDischargeRate     *float64 `yaml:"max_discharge_rate"`
	InitialSoC           *float64 `yaml:"initial_soc"`
	CycleDegradationCost *float64 `yaml:"cycle_degradation_cost"`
	V2GSellPrice         *float64 `yaml:"v2g_sell_price"`
	GridDemandThreshold  *float64 `yaml:"grid_demand_threshold"`
	AllowIdle            bool     `yaml:"allow_idle"`
}

func (b BatteryDef) ToModel() model.Params {
	p := model.DefaultParams()
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.BatteryCapacity, b.Capacity)
	set(&p.MaxChargeRate, b.MaxChargeRate)
	set(&p.MaxDischargeRate, b.MaxDischargeRate)
	set(&p.InitialSoC, b.InitialSoC)
	set(&p.CycleDegradationCost, b.CycleDegradationCost)
	set(&p.V2GSellPrice, b.V2GSellPrice)
	set(&p.GridDemandThreshold, b.GridDemandThreshold)
	p.AllowIdle = b.AllowIdle
	return p
}

// Expected lists the checked outcome. Nil values are not checked.
type Expected struct {
	Status        string   `yaml:"status"`
	NetCost       *float64 `yaml:"net_cost,omitempty"`
	FinalSoC      *float64 `yaml:"final_soc,omitempty"`
	SolarKWh      *float64 `yaml:"solar_kwh,omitempty"`
	GridKWh       *float64 `yaml:"grid_kwh,omitempty"`
	DischargedKWh *float64 `yaml:"discharged_kwh,omitempty"`
}

type Scenario struct {
	Name           string         `yaml:"name"`
	Description    string         `yaml:"description,omitempty"`
	Mode           string         `yaml:"mode"`
	Deadline       int            `yaml:"deadline"`
	RequiredEnergy float64        `yaml:"required_energy"`
	Battery        BatteryDef     `yaml:"battery"`
	Forecast       model.Forecast `yaml:"forecast"`
	Expected       Expected       `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
