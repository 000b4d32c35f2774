package config

import (
	"fmt"

	"github.com/kilianp07/v2g-planner/core/factory"
	"github.com/kilianp07/v2g-planner/core/model"
)

// PlannerConfig holds the request used by the periodic planning loop and the
// defaults of the plan command.
type PlannerConfig struct {
	Forecast string `json:"forecast"`
	Mode     string `json:"mode"`
	// DeadlineHours is the number of hours to plan.
	DeadlineHours  int     `json:"deadline_hours"`
	RequiredEnergy float64 `json:"required_energy"`
	// RequiredRangeMiles overrides RequiredEnergy when positive.
	RequiredRangeMiles float64 `json:"required_range_miles"`
	StartHour          int     `json:"start_hour"`
	DayOffset          int     `json:"day_offset"`
	// IntervalMinutes is the period of the serve loop.
	IntervalMinutes int  `json:"interval_minutes"`
	Publish         bool `json:"publish"`
	// Prices, when set, replaces the forecast prices with a market feed.
	Prices *factory.ModuleConfig `json:"prices"`
}

func (c *PlannerConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "cost"
	}
	if c.DeadlineHours == 0 {
		c.DeadlineHours = 12
	}
	if c.IntervalMinutes <= 0 {
		c.IntervalMinutes = 60
	}
}

func (c PlannerConfig) Validate() error {
	if _, err := model.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("planner.mode: %w", err)
	}
	if c.StartHour < 0 || c.StartHour > 23 {
		return fmt.Errorf("planner.start_hour must lie in [0, 23]")
	}
	if c.DayOffset < 0 {
		return fmt.Errorf("planner.day_offset must not be negative")
	}
	if c.RequiredEnergy < 0 || c.RequiredRangeMiles < 0 {
		return fmt.Errorf("planner required energy and range must not be negative")
	}
	if c.Prices != nil && c.Prices.Type == "" {
		return fmt.Errorf("planner.prices.type is required")
	}
	return nil
}

// Energy resolves the target energy using the battery's energy per mile
// when a range is given.
func (c PlannerConfig) Energy(p model.Params) float64 {
	if c.RequiredRangeMiles > 0 {
		return p.RequiredEnergyForRange(c.RequiredRangeMiles)
	}
	return c.RequiredEnergy
}
