package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/v2g-planner/core/plan"
	"github.com/kilianp07/v2g-planner/core/scheduler"
)

// WriteChartHTML renders the hourly flows and the state of charge as a
// standalone HTML line chart.
func WriteChartHTML(w io.Writer, r scheduler.Result, clock plan.Clock) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Charging Schedule", Subtitle: fmt.Sprintf("Mode: %s", r.Mode)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kW / kWh"}),
		charts.WithLegendOpts(opts.Legend{}),
	)

	rows := Rows(r, clock)
	xAxis := make([]string, len(rows))
	solar := make([]opts.LineData, len(rows))
	grid := make([]opts.LineData, len(rows))
	discharge := make([]opts.LineData, len(rows))
	soc := make([]opts.LineData, len(rows))
	for i, row := range rows {
		xAxis[i] = row.Clock
		solar[i] = opts.LineData{Value: row.SolarKW}
		grid[i] = opts.LineData{Value: row.GridKW}
		discharge[i] = opts.LineData{Value: row.DischargeKW}
		soc[i] = opts.LineData{Value: row.SoCKWh}
	}

	line.SetXAxis(xAxis).
		AddSeries("Solar Charging", solar).
		AddSeries("Grid Charging", grid).
		AddSeries("Grid Discharging", discharge).
		AddSeries("State of Charge", soc)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
