package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent ingest runs",
	Long: `Shows the most recent ingest runs, newest first, with the item
count per source or the error that failed the run.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if runStore == nil {
		return errors.New("history store not configured")
	}

	runs, err := runStore.Recent(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("loading ingest history: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No ingest runs recorded yet.")
		return nil
	}

	for _, r := range runs {
		when := r.StartedAt.Format("2006-01-02 15:04:05")
		if r.Error != "" {
			cmd.Printf("  %s  %-8s %-28s failed: %s\n", when, r.Source, r.Collection, r.Error)
			continue
		}
		cmd.Printf("  %s  %-8s %-28s %d items\n", when, r.Source, r.Collection, r.Items)
	}
	return nil
}
