package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/v2g-planner/core/journal"
	"github.com/kilianp07/v2g-planner/core/model"
	"github.com/kilianp07/v2g-planner/core/scheduler"
	"github.com/kilianp07/v2g-planner/infra/kpi"
)

func TestKPIBackfillCommand(t *testing.T) {
	dir := t.TempDir()
	journalPath := filepath.Join(dir, "solves.jsonl")
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(fmt.Sprintf("journal:\n  enabled: true\n  backend: jsonl\n  path: %s\n", journalPath)), 0o644))

	history, err := journal.NewJSONLStore(journalPath)
	require.NoError(t, err)
	res := &scheduler.Result{
		Mode:            model.ModeCost,
		Horizon:         1,
		SolarCharging:   []float64{1},
		GridCharging:    []float64{2},
		GridDischarging: []float64{0},
		BatterySoC:      []float64{0, 3},
		Actions:         []model.Action{model.ActionGrid},
	}
	require.NoError(t, history.Append(context.Background(), journal.FromEvent(scheduler.Event{
		ID: "a", Time: time.Now(), Input: scheduler.Input{Horizon: 1, Mode: model.ModeCost}, Result: res,
	})))

	dbPath := filepath.Join(dir, "kpi.db")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"kpi", "backfill", "-c", cfgFile, "--db", dbPath})
	defer func() {
		rootCmd.SetArgs(nil)
		cfgPath = ""
	}()
	require.NoError(t, Execute())
	assert.Contains(t, out.String(), "backfilled 1 solves")

	store, err := kpi.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	recs, err := store.Query("cost", time.Now().Add(-24*time.Hour), time.Now())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.InDelta(t, 2, recs[0].GridKWh, 1e-9)
}
