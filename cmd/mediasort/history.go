package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/On-Jun9/MediaSort/internal/history"
	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent organize, clean and move runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if _, err := os.Stat(cfg.HistoryFile); os.IsNotExist(err) {
				fmt.Fprintln(out, "No history yet.")
				return nil
			}

			store, err := history.Open(cfg.HistoryFile)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(context.Background(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet.")
				return nil
			}
			fmt.Fprintln(out, renderHistory(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")

	return cmd
}

func renderHistory(entries []types.HistoryEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			string(e.Kind),
			e.Source,
			e.Dest,
			historyOutcome(e),
		})
	}
	return renderTable(
		[]string{"When", "Kind", "Source", "Dest", "Outcome"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func historyOutcome(e types.HistoryEntry) string {
	var s string
	switch {
	case e.Stats != nil:
		s = fmt.Sprintf("total=%d copied=%d skipped=%d errors=%d",
			e.Stats.Total, e.Stats.Copied, e.Stats.Skipped, e.Stats.Errors)
		if e.Stats.DryRun {
			s = fmt.Sprintf("dry-run would-copy=%d %s", e.Stats.Planned, s)
		}
	case e.Resolve != nil && e.Kind == types.HistoryKindMove:
		s = fmt.Sprintf("moved=%d skipped=%d collisions=%d errors=%d",
			e.Resolve.Moved, e.Resolve.Skipped, e.Resolve.Collisions, e.Resolve.Errors)
	case e.Resolve != nil:
		s = fmt.Sprintf("deleted=%d skipped=%d errors=%d",
			e.Resolve.Deleted, e.Resolve.Skipped, e.Resolve.Errors)
	}
	if e.Cancelled {
		s += " (cancelled)"
	}
	return s
}
