package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/v2g-planner/core/journal"
	"github.com/kilianp07/v2g-planner/infra/kpi"
	"github.com/kilianp07/v2g-planner/jobs/ecokpi"
)

var kpiBackfill struct {
	db    string
	mode  string
	since time.Duration
}

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Ecological KPI commands",
}

var kpiBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Rebuild daily KPIs from the solve journal",
	RunE:  runKPIBackfill,
}

func init() {
	f := kpiBackfillCmd.Flags()
	f.StringVar(&kpiBackfill.db, "db", "", "sqlite KPI database")
	f.StringVar(&kpiBackfill.mode, "mode", "", "only backfill solves of this mode")
	f.DurationVar(&kpiBackfill.since, "since", 0, "only backfill solves newer than this age, e.g. 720h")
	_ = kpiBackfillCmd.MarkFlagRequired("db")
	kpiCmd.AddCommand(kpiBackfillCmd)
	rootCmd.AddCommand(kpiCmd)
}

func runKPIBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	history, err := journal.Open(cfg.Journal.Options())
	if err != nil {
		return err
	}
	defer func() { _ = history.Close() }()
	store, err := kpi.NewSQLiteStore(kpiBackfill.db)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	q := journal.Query{Mode: kpiBackfill.mode}
	if kpiBackfill.since > 0 {
		q.Start = time.Now().Add(-kpiBackfill.since)
	}
	n, err := ecokpi.Backfill(context.Background(), store, history, q)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "backfilled %d solves into %s\n", n, kpiBackfill.db)
	return err
}
