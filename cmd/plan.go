package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/v2g-planner/app"
	"github.com/kilianp07/v2g-planner/core/forecast"
	"github.com/kilianp07/v2g-planner/core/model"
	"github.com/kilianp07/v2g-planner/infra/logger"
	"github.com/kilianp07/v2g-planner/pkg/export"
)

type planFlags struct {
	forecast       string
	deadline       int
	requiredEnergy float64
	requiredRange  float64
	mode           string
	startHour      int
	dayOffset      int
	csvPath        string
	jsonPath       string
	chartPath      string
	publish        bool
}

var pf planFlags

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Solve one charging plan and print it",
	RunE:  runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&pf.forecast, "forecast", "", "forecast file (json, yaml or csv)")
	f.IntVar(&pf.deadline, "deadline", 0, "hours to plan (defaults to planner.deadline_hours)")
	f.Float64Var(&pf.requiredEnergy, "required-energy", 0, "state of charge needed at the deadline in kWh")
	f.Float64Var(&pf.requiredRange, "required-range", 0, "driving range needed at the deadline in miles, overrides --required-energy")
	f.StringVar(&pf.mode, "mode", "", "cost or eco (defaults to planner.mode)")
	f.IntVar(&pf.startHour, "start-hour", -1, "wall clock hour of the first planned hour (defaults to the forecast's)")
	f.IntVar(&pf.dayOffset, "day-offset", 0, "days after tomorrow the plan starts")
	f.StringVar(&pf.csvPath, "csv", "", "write the hourly schedule as CSV")
	f.StringVar(&pf.jsonPath, "json", "", "write the hourly schedule as JSON")
	f.StringVar(&pf.chartPath, "chart", "", "write the hourly schedule as an HTML chart")
	f.BoolVar(&pf.publish, "publish", false, "publish the plan over MQTT")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := pf.forecast
	if path == "" {
		path = cfg.Planner.Forecast
	}
	if path == "" {
		return fmt.Errorf("--forecast is required")
	}
	fc, err := forecast.Load(path)
	if err != nil {
		return err
	}
	if pf.publish {
		cfg.MQTT.Enabled = true
		if err := cfg.MQTT.Validate(); err != nil {
			return err
		}
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("plan-command").Errorf("service close: %v", err)
		}
	}()

	req, err := svc.ConfiguredRequest(fc)
	if err != nil {
		return err
	}
	if err := applyPlanFlags(cmd, &req, cfg.Battery); err != nil {
		return err
	}

	out, err := svc.Plan(ctx, req)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(w, out.Text); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, out.Summary.String()); err != nil {
		return err
	}
	if pf.csvPath != "" {
		if err := writeFile(pf.csvPath, func(f *os.File) error { return export.WriteCSV(f, out.Result, out.Clock) }); err != nil {
			return err
		}
	}
	if pf.jsonPath != "" {
		if err := writeFile(pf.jsonPath, func(f *os.File) error { return export.WriteJSON(f, out.Result, out.Clock) }); err != nil {
			return err
		}
	}
	if pf.chartPath != "" {
		if err := writeFile(pf.chartPath, func(f *os.File) error { return export.WriteChartHTML(f, out.Result, out.Clock) }); err != nil {
			return err
		}
	}
	return nil
}

func applyPlanFlags(cmd *cobra.Command, req *app.Request, p model.Params) error {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		m, err := model.ParseMode(pf.mode)
		if err != nil {
			return err
		}
		req.Mode = m
	}
	if flags.Changed("deadline") {
		req.Deadline = pf.deadline
	}
	if flags.Changed("required-energy") {
		req.RequiredEnergy = pf.requiredEnergy
	}
	if flags.Changed("required-range") {
		req.RequiredEnergy = p.RequiredEnergyForRange(pf.requiredRange)
	}
	if pf.startHour >= 0 {
		if pf.startHour > 23 {
			return fmt.Errorf("--start-hour must lie in [0, 23]")
		}
		req.StartHour = pf.startHour
	}
	if flags.Changed("day-offset") {
		req.DayOffset = pf.dayOffset
	}
	req.Publish = req.Publish || pf.publish
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
