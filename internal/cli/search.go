package cli

import (
	"github.com/spf13/cobra"

	"github.com/hbacelar8/tecarius/internal/ui"
	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/search"
)

var (
	searchInstalled bool
	searchLimit     int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fuzzy-search the package databases",
	Long: `Search every configured database with fuzzy matching: the query
characters must appear in order, not necessarily together. Results
rank by match quality; description hits rank below name hits.

Examples:
  tecarius search firefox         # Search all databases
  tecarius search -i python       # Search installed packages only
  tecarius search -l 10 editor    # Show the ten best matches`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVarP(&searchInstalled, "installed", "i", false, "search installed packages only")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 30, "maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	snap, err := loadSnapshot(ctx)
	if err != nil {
		return err
	}

	scope := search.ScopeNameAndDescription
	if searchInstalled {
		scope = search.ScopeInstalledOnly
	}

	matches, err := search.Filter(ctx, snap, args[0], scope)
	if err != nil {
		return err
	}

	if searchLimit > 0 && len(matches) > searchLimit {
		matches = matches[:searchLimit]
	}

	records := make([]*alpm.PackageRecord, 0, len(matches))
	for _, match := range matches {
		records = append(records, match.Record)
	}

	ui.PrintRecords(records, snap)
	if len(records) > 0 {
		ui.MutedMsg("\n%d results for '%s'", len(records), args[0])
	}
	return nil
}
