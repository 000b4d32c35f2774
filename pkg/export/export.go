// Package export writes solved schedules as JSON or CSV rows, one per hour.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/v2g-planner/core/plan"
	"github.com/kilianp07/v2g-planner/core/scheduler"
)

// Row is one hour of an exported schedule.
type Row struct {
	Hour        int     `json:"hour"`
	Clock       string  `json:"clock"`
	SolarKW     float64 `json:"solar_kw"`
	GridKW      float64 `json:"grid_kw"`
	DischargeKW float64 `json:"discharge_kw"`
	// SoCKWh is the state of charge at the start of the hour.
	SoCKWh float64 `json:"soc_kwh"`
	Action string  `json:"action"`
}

// Rows flattens r using clock for the labels.
func Rows(r scheduler.Result, clock plan.Clock) []Row {
	rows := make([]Row, r.Horizon)
	for h := range rows {
		rows[h] = Row{
			Hour:        h,
			Clock:       clock.Label(h),
			SolarKW:     r.SolarCharging[h],
			GridKW:      r.GridCharging[h],
			DischargeKW: r.GridDischarging[h],
			SoCKWh:      r.BatterySoC[h],
			Action:      r.Actions[h].String(),
		}
	}
	return rows
}

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, r scheduler.Result, clock plan.Clock) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Rows(r, clock))
}

// WriteCSV writes the schedule to w in CSV format with a header row.
func WriteCSV(w io.Writer, r scheduler.Result, clock plan.Clock) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"hour", "clock", "solar_kw", "grid_kw", "discharge_kw", "soc_kwh", "action"}); err != nil {
		return err
	}
	for _, row := range Rows(r, clock) {
		rec := []string{
			strconv.Itoa(row.Hour),
			row.Clock,
			strconv.FormatFloat(row.SolarKW, 'f', -1, 64),
			strconv.FormatFloat(row.GridKW, 'f', -1, 64),
			strconv.FormatFloat(row.DischargeKW, 'f', -1, 64),
			strconv.FormatFloat(row.SoCKWh, 'f', -1, 64),
			row.Action,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
