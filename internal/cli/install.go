package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hbacelar8/tecarius/internal/history"
	"github.com/hbacelar8/tecarius/internal/ui"
	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/search"
	"github.com/hbacelar8/tecarius/pkg/staging"
	"github.com/hbacelar8/tecarius/pkg/store"
)

var installCmd = &cobra.Command{
	Use:   "install [packages...]",
	Short: "Install one or more packages",
	Long: `Resolve the named packages against the repository databases,
plan a complete transaction including required dependencies, and
execute it after confirmation.

A name that matches no package directly is resolved through its
providers, so capabilities like "ssl" work too.

Examples:
  tecarius install vim git          # Install with dependencies
  tecarius install -y ripgrep       # Install without confirmation
  tecarius install -n linux-lts     # Show the plan without executing`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	snap, err := loadSnapshot(ctx)
	if err != nil {
		return err
	}

	var entries []staging.Entry
	for _, name := range args {
		rec, err := resolveCandidate(ctx, snap, name)
		if err != nil {
			return err
		}
		if local := snap.Local(rec.Name); local != nil && snap.UpdateFor(local) == nil {
			ui.MutedMsg("%s %s is already installed", rec.Name, local.Version)
			continue
		}
		entries = append(entries, staging.Entry{
			Identity: rec.Identity(),
			Intent:   staging.IntentInstall,
		})
	}

	if len(entries) == 0 {
		ui.InfoMsg("Nothing to do")
		return nil
	}

	return runTransaction(ctx, snap, entries, history.OpInstall)
}

// resolveCandidate maps a requested name to a sync record: direct name
// first, then capability providers, with fuzzy suggestions on a miss.
func resolveCandidate(ctx context.Context, snap *store.Snapshot, name string) (*alpm.PackageRecord, error) {
	if best := snap.BestCandidate(name); best != nil {
		return best, nil
	}

	providers := snap.Providers(alpm.DepSpec{Name: name})
	switch {
	case len(providers) == 1:
		ui.MutedMsg("%s is provided by %s", name, providers[0].Name)
		return providers[0], nil
	case len(providers) > 1:
		if cfg.General.AutoConfirm {
			return providers[0], nil
		}
		return ui.SelectRecord(providers, fmt.Sprintf("Select a provider for %s", name))
	}

	// Suggest close names before giving up.
	if matches, err := search.Filter(ctx, snap, name, search.ScopeName); err == nil && len(matches) > 0 {
		limit := 5
		if len(matches) < limit {
			limit = len(matches)
		}
		suggestions := make([]string, 0, limit)
		for _, match := range matches[:limit] {
			suggestions = append(suggestions, match.Record.Name)
		}
		ui.MutedMsg("Did you mean: %s", strings.Join(suggestions, ", "))
	}

	return nil, fmt.Errorf("%s: %w", name, ErrPackageNotFound)
}
