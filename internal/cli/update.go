package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hbacelar8/tecarius/internal/history"
	"github.com/hbacelar8/tecarius/internal/ui"
)

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"sync"},
	Short:   "Sync the repository databases",
	Long: `Download fresh repository databases from the mirrors. Nothing
is installed or upgraded.

Examples:
  tecarius update           # Sync all configured repositories`,
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	return syncDatabases(cmd.Context())
}

// syncDatabases refreshes the repository databases under privileges and
// records the sync in the journal.
func syncDatabases(ctx context.Context) error {
	if err := ensureCore(ctx); err != nil {
		return err
	}

	if err := exec.Acquire(ctx); err != nil {
		return err
	}

	entry := history.NewEntry(history.OpSync)

	sp := ui.NewSpinner("Syncing repository databases...")
	err := engine.Refresh(ctx)
	sp.Stop()

	if err != nil {
		entry.MarkFailed(err)
		ui.ErrorMsg("Sync failed: %v", err)
	} else {
		entry.MarkSuccess()
		ui.SuccessMsg("Repository databases synced")
	}

	if journal, journalErr := history.Open(); journalErr == nil {
		_ = journal.Record(entry) //nolint:errcheck
		_ = journal.Close()       //nolint:errcheck
	}

	return err
}
