package cli

import (
	"github.com/spf13/cobra"

	"github.com/hbacelar8/tecarius/internal/bridge"
	"github.com/hbacelar8/tecarius/internal/history"
	"github.com/hbacelar8/tecarius/internal/tui"
	"github.com/hbacelar8/tecarius/internal/ui"
	"github.com/hbacelar8/tecarius/pkg/plan"
	"github.com/hbacelar8/tecarius/pkg/transaction"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive interface",
	Long: `Launch the interactive terminal interface. This is also what
running tecarius without a subcommand does.

Browse and fuzzy-search the package databases, stage installs and
removals, review the resolved transaction plan, and execute it.

Navigation:
  - j/k or arrow keys move, g/G first/last, ctrl+u/d jump
  - / searches, alt+u filters to upgradable packages
  - x stages or unstages, X stages every upgrade
  - S plans the staged set, enter confirms the plan
  - o opens details, tab cycles the dependency lists
  - ? shows all bindings, q quits`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := ensureCore(ctx); err != nil {
		return err
	}

	// The journal is optional; the bridge runs without one.
	journal, err := history.Open()
	if err != nil {
		ui.WarningMsg("Could not open history: %v", err)
		journal = nil
	}
	defer func() {
		if journal != nil {
			journal.Close()
		}
	}()

	b := bridge.New(bridge.Options{
		Loader:    loader,
		Refresher: engine,
		Planner:   plan.NewPlanner(cfg.Timeouts.PlanTimeout()),
		Executor:  transaction.NewExecutor(engine, exec),
		Journal:   journal,
	})
	b.Start(ctx)
	defer b.Stop()

	if err := b.WatchDatabases(conf); err != nil && cfg.Output.Verbose {
		ui.WarningMsg("Database watcher unavailable: %v", err)
	}

	return tui.Run(b, cfg)
}
