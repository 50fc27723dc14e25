package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hbacelar8/tecarius/internal/ui"
	"github.com/hbacelar8/tecarius/pkg/alpm"
)

var (
	listExplicit   bool
	listUpgradable bool
	listOrphans    bool
	listLimit      int
	listPattern    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	Long: `List installed packages from the local database, optionally
filtered by install reason, upgrade availability or orphan status.

Examples:
  tecarius list                 # All installed packages
  tecarius list --explicit      # Explicitly installed only
  tecarius list --upgradable    # Packages with a newer version
  tecarius list --orphans       # Dependencies nothing requires
  tecarius list -p vim          # Names containing 'vim'`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listExplicit, "explicit", "e", false, "explicitly installed packages only")
	listCmd.Flags().BoolVarP(&listUpgradable, "upgradable", "u", false, "packages with a newer sync candidate")
	listCmd.Flags().BoolVarP(&listOrphans, "orphans", "o", false, "installed-as-dependency packages nothing requires")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 0, "limit number of results")
	listCmd.Flags().StringVarP(&listPattern, "pattern", "p", "", "filter by name substring")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	snap, err := loadSnapshot(ctx)
	if err != nil {
		return err
	}

	var records []*alpm.PackageRecord
	switch {
	case listUpgradable:
		records = snap.Upgradable()
	case listOrphans:
		records = snap.Orphans()
	default:
		records = snap.Installed()
	}

	if listExplicit {
		filtered := records[:0:0]
		for _, rec := range records {
			if rec.Reason == alpm.ReasonExplicit {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	if listPattern != "" {
		pattern := strings.ToLower(listPattern)
		filtered := records[:0:0]
		for _, rec := range records {
			if strings.Contains(strings.ToLower(rec.Name), pattern) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	total := len(records)
	if listLimit > 0 && len(records) > listLimit {
		records = records[:listLimit]
	}

	ui.PrintRecords(records, snap)
	ui.MutedMsg("\nTotal: %d packages", total)

	return nil
}
