package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hbacelar8/tecarius/internal/ui"
)

var infoCmd = &cobra.Command{
	Use:   "info [package]",
	Short: "Show package information",
	Long: `Display detailed information about a package: the installed
record when present, the best repository candidate otherwise.

Examples:
  tecarius info vim           # Show package details
  tecarius info linux         # Installed record plus pending upgrade`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]

	snap, err := loadSnapshot(ctx)
	if err != nil {
		return err
	}

	local := snap.Local(name)
	best := snap.BestCandidate(name)

	rec := local
	if rec == nil {
		rec = best
	}
	if rec == nil {
		return fmt.Errorf("%s: %w", name, ErrPackageNotFound)
	}

	ui.PrintRecordInfo(rec, snap)

	switch {
	case local != nil && snap.UpdateFor(local) != nil:
		ui.WarningMsg("Upgrade available: %s -> %s", local.Version, snap.UpdateFor(local).Version)
	case local != nil:
		ui.SuccessMsg("Package is installed")
	default:
		ui.MutedMsg("Package is not installed")
	}

	return nil
}
