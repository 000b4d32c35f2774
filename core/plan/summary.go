package plan

import (
	"fmt"
	"math"
	"strings"

	"github.com/kilianp07/v2g-planner/core/scheduler"
)

// Summary is the battery and cost overview of a solved plan.
type Summary struct {
	StartSoC       float64 `json:"start_soc"`
	EndSoC         float64 `json:"end_soc"`
	RequiredEnergy float64 `json:"required_energy"`
	scheduler.Totals
	NetCost float64 `json:"net_cost"`
	// BaselineCost is the grid only comparison cost, nil when unknown.
	BaselineCost *float64 `json:"baseline_cost,omitempty"`
}

// Summarize reads the end state at the deadline of r.
func Summarize(r scheduler.Result, requiredEnergy float64) Summary {
	end := 0.0
	if n := len(r.BatterySoC); n > 0 {
		end = r.BatterySoC[min(r.Horizon, n-1)]
	}
	return Summary{
		StartSoC:       r.StartSoC(),
		EndSoC:         end,
		RequiredEnergy: requiredEnergy,
		Totals:         r.Totals(),
		NetCost:        r.NetCost,
	}
}

// WithBaseline attaches a baseline cost for the savings line.
func (s Summary) WithBaseline(cost float64) Summary {
	s.BaselineCost = &cost
	return s
}

// Savings is the baseline cost minus the net cost, zero without a baseline.
func (s Summary) Savings() float64 {
	if s.BaselineCost == nil {
		return 0
	}
	return *s.BaselineCost - s.NetCost
}

func money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-£%.2f", math.Abs(v))
	}
	return fmt.Sprintf("£%.2f", v)
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, "Battery Summary")
	fmt.Fprintf(&b, "- Start SoC: %.2f kWh\n", s.StartSoC)
	fmt.Fprintf(&b, "- End SoC by deadline: %.2f kWh\n", s.EndSoC)
	fmt.Fprintf(&b, "- Required energy: %.2f kWh\n\n", s.RequiredEnergy)
	fmt.Fprintln(&b, "Solar & Grid Use")
	fmt.Fprintf(&b, "- Solar Used: %.2f kWh\n", s.SolarKWh)
	fmt.Fprintf(&b, "- Grid Used: %.2f kWh\n", s.GridKWh)
	fmt.Fprintf(&b, "- Discharged to Grid (V2G): %.2f kWh\n\n", s.DischargedKWh)
	fmt.Fprintln(&b, "Cost Analysis")
	fmt.Fprintf(&b, "- Net Cost: %s\n", money(s.NetCost))
	if s.BaselineCost != nil {
		fmt.Fprintf(&b, "- Full Grid Baseline Cost: %s\n", money(*s.BaselineCost))
		fmt.Fprintf(&b, "- Savings vs Baseline: %s\n", money(s.Savings()))
	}
	return b.String()
}
