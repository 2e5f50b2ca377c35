package cli

import (
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Show the status of every configured source",
	Long: `Lists each configured source and whether it will be ingested.
Sources enable themselves when their credentials resolve; a source is
skipped when its credentials are missing or it is disabled in the
configuration file.`,
	Run: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) {
	cmd.Println("Sources:")
	for _, s := range cfg.Statuses() {
		state := "ready"
		switch {
		case s.Disabled:
			state = "disabled"
		case !s.HasCredentials:
			state = "missing credentials"
		}
		cmd.Printf("  %-8s %s\n", s.Name, state)
	}
}
