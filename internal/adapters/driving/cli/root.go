// Package cli implements the membox command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/membox-labs/membox-cli/internal/config"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
	"github.com/membox-labs/membox-cli/internal/core/ports/driving"
	"github.com/membox-labs/membox-cli/internal/logger"
)

var verbose bool

// Services injected by main before Execute. Commands nil-check the
// service they need so the package stays testable without full wiring.
var (
	cfg           config.Config
	answerService driving.AnswerService
	ingestService driving.Ingestor
	runStore      driven.IngestRunStore
)

// Services bundles everything the commands need.
type Services struct {
	Config   config.Config
	Answerer driving.AnswerService
	Ingestor driving.Ingestor
	Runs     driven.IngestRunStore
}

// SetServices wires the commands to their backing services.
func SetServices(s Services) {
	cfg = s.Config
	answerService = s.Answerer
	ingestService = s.Ingestor
	runStore = s.Runs
}

var rootCmd = &cobra.Command{
	Use:   "membox",
	Short: "Ask questions across your organisation's knowledge",
	Long: `Membox indexes content from GitHub, Google Drive, Slack, Microsoft
Teams and Jira into per-source vector collections, then answers
natural-language questions by retrieving relevant context from every
selected source and synthesizing a single answer with its sources.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
