package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/membox-labs/membox-cli/internal/connectors/drive"
	"github.com/membox-labs/membox-cli/internal/connectors/file"
	"github.com/membox-labs/membox-cli/internal/connectors/github"
	"github.com/membox-labs/membox-cli/internal/connectors/jira"
	"github.com/membox-labs/membox-cli/internal/connectors/slack"
	"github.com/membox-labs/membox-cli/internal/connectors/teams"
	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
	"github.com/membox-labs/membox-cli/internal/core/ports/driving"
	"github.com/membox-labs/membox-cli/internal/core/services"
	"github.com/membox-labs/membox-cli/internal/logger"
)

var (
	ingestMaxItems   int
	ingestFromFile   string
	ingestFileSource string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [sources...]",
	Short: "Fetch and index content from the configured sources",
	Long: `Fetches content from every enabled source and indexes it into the
vector store, one collection per source. Passing source names restricts
the run to those sources. A connector failure never aborts the batch:
the failed source is reported and the remaining sources still run.

With --from-file, a local JSON export is ingested instead of the live
APIs; --file-source tags the records (teams, jira, ...) so they are
indexed into the matching collection.`,
	Args: cobra.ArbitraryArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestMaxItems, "max-items", 0, "cap on items fetched per source (0 = no cap)")
	ingestCmd.Flags().StringVar(&ingestFromFile, "from-file", "", "ingest a local JSON export instead of the live APIs")
	ingestCmd.Flags().StringVar(&ingestFileSource, "file-source", "generic", "source tag for --from-file records")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	jobs := buildJobs(args)
	if len(jobs) == 0 {
		cmd.Println("No sources to ingest. Run `membox sources` to check credential status.")
		return nil
	}

	reports := ingestService.IngestAll(context.Background(), jobs)

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
			cmd.Printf("  %-8s failed: %v\n", r.Source, r.Err)
			continue
		}
		cmd.Printf("  %-8s %d items -> %s\n", r.Source, r.Items, r.Collection)
	}

	if failed == len(reports) {
		return errors.New("every source failed to ingest")
	}
	return nil
}

// collectionFor maps a source short name to its collection.
var collectionFor = map[string]string{
	"github":  services.CollectionGitHub,
	"drive":   services.CollectionDrive,
	"slack":   services.CollectionSlack,
	"teams":   services.CollectionTeams,
	"jira":    services.CollectionJira,
	"generic": services.CollectionGeneric,
}

// buildJobs assembles the connector jobs for one ingest run. An empty
// selection means every enabled source; an explicitly selected source
// that is disabled or unknown is warned about and skipped.
func buildJobs(selected []string) []driving.IngestJob {
	params := driven.FetchParams{MaxItems: ingestMaxItems}

	if ingestFromFile != "" {
		collection, ok := collectionFor[ingestFileSource]
		if !ok {
			logger.Warn("Unknown file source %q, tagging as generic", ingestFileSource)
			ingestFileSource = "generic"
			collection = services.CollectionGeneric
		}
		c := file.New(file.Config{
			Path:   ingestFromFile,
			Source: domain.SourceTag(ingestFileSource),
		})
		return []driving.IngestJob{{Connector: c, Collection: collection, Params: params}}
	}

	want := make(map[string]bool, len(selected))
	for _, name := range selected {
		if _, ok := collectionFor[name]; !ok {
			logger.Warn("Unknown source %q, skipping", name)
			continue
		}
		want[name] = true
	}
	pick := func(name string, enabled bool) bool {
		if len(selected) > 0 && !want[name] {
			return false
		}
		if !enabled {
			if want[name] {
				logger.Warn("Source %q is not enabled (disabled or missing credentials), skipping", name)
			}
			return false
		}
		return true
	}

	var jobs []driving.IngestJob
	add := func(c driven.Connector, collection string) {
		jobs = append(jobs, driving.IngestJob{Connector: c, Collection: collection, Params: params})
	}

	if gh := cfg.Connectors.GitHub; pick("github", gh.Enabled()) {
		add(github.New(github.Config{
			Token:         gh.Token(),
			Repos:         gh.Repositories,
			IncludeReadme: gh.IncludeReadme,
			IncludeIssues: gh.IncludeIssues,
			IncludePRs:    gh.IncludePRs,
		}), services.CollectionGitHub)
	}
	if d := cfg.Connectors.Drive; pick("drive", d.Enabled()) {
		add(drive.New(drive.Config{
			CredentialsFile: d.CredentialsFile,
			TokenFile:       d.TokenFile,
			FolderName:      d.Folder,
			MIMETypes:       d.MIMETypes,
		}), services.CollectionDrive)
	}
	if s := cfg.Connectors.Slack; pick("slack", s.Enabled()) {
		add(slack.New(slack.Config{
			Token:    s.Token(),
			Channels: s.Channels,
		}), services.CollectionSlack)
	}
	if t := cfg.Connectors.Teams; pick("teams", t.Enabled()) {
		add(teams.New(teams.Config{
			TenantID:     t.TenantID(),
			ClientID:     t.ClientID(),
			ClientSecret: t.ClientSecret(),
			TeamID:       t.TeamID,
			ChannelIDs:   t.ChannelIDs,
		}), services.CollectionTeams)
	}
	if j := cfg.Connectors.Jira; pick("jira", j.Enabled()) {
		add(jira.New(jira.Config{
			BaseURL:  j.URL(),
			Email:    j.Username(),
			APIToken: j.APIToken(),
			JQL:      j.JQL,
		}), services.CollectionJira)
	}

	return jobs
}
