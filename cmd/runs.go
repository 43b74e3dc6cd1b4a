package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seisnet/css3convert/internal/runlog"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent conversion runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := openJournal(cmd.Context())
		if err != nil {
			return err
		}
		defer journal.Close() //nolint:errcheck

		entries, err := journal.List(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATABASE\tSTATUS\tSEGMENTS\tSTARTED\tDURATION")
		for _, e := range entries {
			database := e.Database
			if database == "" {
				database = "(auto)"
			}
			duration := "-"
			if e.EndedAt != nil {
				duration = e.EndedAt.Sub(e.StartedAt).Round(time.Millisecond).String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
				truncateID(e.ID), database, e.Status,
				e.Succeeded, e.Total,
				e.StartedAt.Local().Format("2006-01-02 15:04:05"),
				duration)
		}
		return w.Flush()
	},
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the run journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := openJournal(cmd.Context())
		if err != nil {
			return err
		}
		defer journal.Close() //nolint:errcheck

		stats, err := journal.Stats(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Runs:\t%d\n", stats.Runs)
		fmt.Fprintf(w, "Complete:\t%d\n", stats.Complete)
		fmt.Fprintf(w, "Failed:\t%d\n", stats.Failed)
		fmt.Fprintf(w, "Running:\t%d\n", stats.Running)
		fmt.Fprintf(w, "Segments converted:\t%d/%d\n", stats.Succeeded, stats.Total)
		return w.Flush()
	},
}

func openJournal(ctx context.Context) (*runlog.Log, error) {
	journal, err := runlog.Open(cfg.RunLog.Path)
	if err != nil {
		return nil, err
	}
	if err := journal.Migrate(ctx); err != nil {
		_ = journal.Close()
		return nil, err
	}
	return journal, nil
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs to show")
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}
