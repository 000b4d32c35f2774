package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/v2g-planner/core/baseline"
	"github.com/kilianp07/v2g-planner/core/forecast"
	"github.com/kilianp07/v2g-planner/core/plan"
)

var (
	baselineForecast string
	baselineEnergy   float64
	baselineDeadline int
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Print the grid only charging cost at the cheapest hours",
	RunE:  runBaseline,
}

func init() {
	f := baselineCmd.Flags()
	f.StringVar(&baselineForecast, "forecast", "", "forecast file (json, yaml or csv)")
	f.Float64Var(&baselineEnergy, "required-energy", 0, "energy to buy in kWh")
	f.IntVar(&baselineDeadline, "deadline", 0, "only consider the first hours (0 uses the whole forecast)")
	_ = baselineCmd.MarkFlagRequired("forecast")
	rootCmd.AddCommand(baselineCmd)
}

func runBaseline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fc, err := forecast.Load(baselineForecast)
	if err != nil {
		return err
	}
	prices := fc.Price
	if baselineDeadline > 0 && baselineDeadline < len(prices) {
		prices = prices[:baselineDeadline]
	}
	bp := baseline.Estimate(prices, baselineEnergy, cfg.Battery.MaxChargeRate)
	clock := plan.Clock{StartHour: fc.StartHour}

	w := cmd.OutOrStdout()
	for h, kwh := range bp.Charge {
		if kwh == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s  %.2f kWh at %.3f\n", clock.Label(h), kwh, prices[h]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Full Grid Baseline Cost: %.2f\n", bp.Cost); err != nil {
		return err
	}
	if bp.Unmet > 0 {
		_, err = fmt.Fprintf(w, "Unmet energy: %.2f kWh\n", bp.Unmet)
	}
	return err
}
