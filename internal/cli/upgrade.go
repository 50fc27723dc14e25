package cli

import (
	"github.com/spf13/cobra"

	"github.com/hbacelar8/tecarius/internal/history"
	"github.com/hbacelar8/tecarius/internal/ui"
	"github.com/hbacelar8/tecarius/pkg/staging"
)

var upgradeNoSync bool

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [packages...]",
	Short: "Upgrade installed packages",
	Long: `Sync the repository databases, then plan and execute an upgrade
of every installed package with a newer version available. Naming
packages limits the upgrade to those.

Examples:
  tecarius upgrade              # Full system upgrade
  tecarius upgrade firefox      # Upgrade one package
  tecarius upgrade --no-sync    # Upgrade from cached databases`,
	RunE: runUpgrade,
}

func init() {
	upgradeCmd.Flags().BoolVar(&upgradeNoSync, "no-sync", false, "skip the database sync")
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := ensureCore(ctx); err != nil {
		return err
	}

	if !upgradeNoSync {
		if err := syncDatabases(ctx); err != nil {
			return err
		}
	}

	snap, err := loadSnapshot(ctx)
	if err != nil {
		return err
	}

	upgradable := snap.Upgradable()
	if len(args) > 0 {
		wanted := make(map[string]bool, len(args))
		for _, name := range args {
			wanted[name] = true
		}
		filtered := upgradable[:0:0]
		for _, rec := range upgradable {
			if wanted[rec.Name] {
				filtered = append(filtered, rec)
			}
		}
		upgradable = filtered
	}

	if len(upgradable) == 0 {
		ui.SuccessMsg("Everything is up to date")
		return nil
	}

	entries := make([]staging.Entry, 0, len(upgradable))
	for _, rec := range upgradable {
		best := snap.UpdateFor(rec)
		if best == nil {
			continue
		}
		entries = append(entries, staging.Entry{
			Identity: best.Identity(),
			Intent:   staging.IntentInstall,
		})
	}

	return runTransaction(ctx, snap, entries, history.OpUpgrade)
}
