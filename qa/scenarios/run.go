package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/v2g-planner/core/metrics"
	"github.com/kilianp07/v2g-planner/core/model"
	"github.com/kilianp07/v2g-planner/core/scheduler"
	"github.com/kilianp07/v2g-planner/infra/logger"
	"github.com/kilianp07/v2g-planner/infra/metrics"
)

const tolerance = 1e-6

// RunScenario solves sc with a Prometheus sink attached and checks the
// expected outcome.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	mode, err := model.ParseMode(sc.Mode)
	if err != nil {
		t.Fatalf("mode: %v", err)
	}
	var last scheduler.Event
	eng := scheduler.New(scheduler.WithObserver(
		coremetrics.NewObserver(sink, logger.NopLogger{}),
		scheduler.ObserverFunc(func(_ context.Context, ev scheduler.Event) { last = ev }),
	))

	in, err := scheduler.NewInput(sc.Forecast, sc.Battery.ToModel(), mode, sc.Deadline, sc.RequiredEnergy)
	if err != nil {
		if sc.Expected.Status != "invalid_input" {
			t.Fatalf("scenario %s: input: %v", sc.Name, err)
		}
		return
	}
	res, _ := eng.Solve(context.Background(), in)

	if got := last.Status(); got != sc.Expected.Status {
		t.Fatalf("scenario %s expected status %s, got %s (%v)", sc.Name, sc.Expected.Status, got, last.Err)
	}
	if n, err := testutil.GatherAndCount(reg, "planner_solves_total"); err != nil || n != 1 {
		t.Errorf("scenario %s: expected one solve series, got %d (%v)", sc.Name, n, err)
	}
	if last.Err != nil {
		return
	}

	totals := res.Totals()
	check(t, sc.Name, "net_cost", sc.Expected.NetCost, res.NetCost)
	check(t, sc.Name, "final_soc", sc.Expected.FinalSoC, res.FilledByDeadline)
	check(t, sc.Name, "solar_kwh", sc.Expected.SolarKWh, totals.SolarKWh)
	check(t, sc.Name, "grid_kwh", sc.Expected.GridKWh, totals.GridKWh)
	check(t, sc.Name, "discharged_kwh", sc.Expected.DischargedKWh, totals.DischargedKWh)
}

func check(t *testing.T, scenario, name string, want *float64, got float64) {
	t.Helper()
	if want == nil {
		return
	}
	if d := got - *want; d > tolerance || d < -tolerance {
		t.Errorf("scenario %s expected %s %g, got %g", scenario, name, *want, got)
	}
}
