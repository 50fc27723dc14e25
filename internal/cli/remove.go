package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hbacelar8/tecarius/internal/history"
	"github.com/hbacelar8/tecarius/pkg/staging"
)

var removeCmd = &cobra.Command{
	Use:     "remove [packages...]",
	Aliases: []string{"uninstall"},
	Short:   "Remove one or more packages",
	Long: `Plan the removal of the named packages. Installed dependencies
that would be left stranded are cascaded into the plan, shown, and
removed together after confirmation.

Examples:
  tecarius remove vim           # Remove with stranded dependencies
  tecarius remove -y old-tool   # Remove without confirmation`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	snap, err := loadSnapshot(ctx)
	if err != nil {
		return err
	}

	var entries []staging.Entry
	for _, name := range args {
		local := snap.Local(name)
		if local == nil {
			return fmt.Errorf("%s is not installed: %w", name, ErrPackageNotFound)
		}
		entries = append(entries, staging.Entry{
			Identity: local.Identity(),
			Intent:   staging.IntentRemove,
		})
	}

	return runTransaction(ctx, snap, entries, history.OpRemove)
}
