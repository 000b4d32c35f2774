package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/v2g-planner/core/model"
	"github.com/kilianp07/v2g-planner/core/plan"
	"github.com/kilianp07/v2g-planner/core/scheduler"
)

func sample() (scheduler.Result, plan.Clock) {
	r := scheduler.Result{
		Mode:            model.ModeCost,
		Horizon:         2,
		SolarCharging:   []float64{0, 2.5, 0},
		GridCharging:    []float64{4, 0, 0},
		GridDischarging: []float64{0, 0, 0},
		BatterySoC:      []float64{1, 5, 7.5},
		Actions:         []model.Action{model.ActionGrid, model.ActionSolar},
	}
	return r, plan.Clock{StartHour: 23, Today: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)}
}

func TestWriteCSV(t *testing.T) {
	r, clock := sample()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, r, clock))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "hour,clock,solar_kw,grid_kw,discharge_kw,soc_kwh,action", lines[0])
	assert.Equal(t, "0,11:00 PM,0,4,0,1,grid", lines[1])
	assert.Equal(t, "1,12:00 AM,2.5,0,0,5,solar", lines[2])
}

func TestWriteJSON(t *testing.T) {
	r, clock := sample()
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r, clock))
	var rows []Row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	assert.Equal(t, Rows(r, clock), rows)
}

func TestRowsEmptyHorizon(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, scheduler.Result{BatterySoC: []float64{3}}, plan.Clock{}))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestWriteChartHTML(t *testing.T) {
	r, clock := sample()
	var buf bytes.Buffer
	require.NoError(t, WriteChartHTML(&buf, r, clock))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Charging Schedule")
	assert.Contains(t, html, "State of Charge")
}
