package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/v2g-planner/core/journal"
)

var journalQuery struct {
	failed bool
	mode   string
	since  time.Duration
	limit  int
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Solve journal commands",
}

var journalLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recorded solves",
	RunE:  runJournalLs,
}

func init() {
	f := journalLsCmd.Flags()
	f.BoolVar(&journalQuery.failed, "failed", false, "only list failed solves")
	f.StringVar(&journalQuery.mode, "mode", "", "only list solves of this mode")
	f.DurationVar(&journalQuery.since, "since", 0, "only list solves newer than this age, e.g. 24h")
	f.IntVar(&journalQuery.limit, "limit", 0, "maximum number of records")
	journalCmd.AddCommand(journalLsCmd)
	rootCmd.AddCommand(journalCmd)
}

func runJournalLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := journal.Open(cfg.Journal.Options())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	q := journal.Query{Mode: journalQuery.mode, FailedOnly: journalQuery.failed, Limit: journalQuery.limit}
	if journalQuery.since > 0 {
		q.Start = time.Now().Add(-journalQuery.since)
	}
	recs, err := store.Query(context.Background(), q)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tID\tMODE\tHOURS\tSTATUS\tNET COST\tDURATION")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%.2f\t%dms\n",
			r.Timestamp.Format(time.RFC3339), r.ID, r.Mode, r.Horizon, r.Status, r.NetCost, r.DurationMS)
	}
	return tw.Flush()
}
