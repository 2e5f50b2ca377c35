package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/membox-labs/membox-cli/internal/core/services"
)

var (
	askSources []string
	askResults int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question across your indexed sources",
	Long: `Answers a natural-language question from the indexed collections.
The question is embedded once and fanned out across every selected
source; the retrieved context is fused and synthesized into a single
answer with its sources listed underneath.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVarP(&askSources, "sources", "s", nil,
		"restrict the question to these sources (github, drive, slack, teams, jira)")
	askCmd.Flags().IntVarP(&askResults, "results", "n", services.DefaultResultsPerCollection,
		"results retrieved per collection")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	answer, err := answerService.Ask(context.Background(), args[0], askSources, askResults)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)

	if answer.Found && len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, s := range answer.Sources {
			cmd.Printf("  - %s\n", s)
		}
	}
	return nil
}
