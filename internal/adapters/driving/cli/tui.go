package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/membox-labs/membox-cli/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive ask view",
	Long: `Launch the interactive terminal interface for asking questions.

Controls:
  Enter    - Ask the typed question
  ↑/↓      - Scroll the answer
  Esc, q   - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	return tui.Run(answerService)
}
