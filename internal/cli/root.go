// Package cli implements the command-line interface for tecarius.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hbacelar8/tecarius/internal/config"
	"github.com/hbacelar8/tecarius/internal/executor"
	"github.com/hbacelar8/tecarius/internal/ui"
	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/store"
)

var (
	// Global flags
	cfgFile string
	dryRun  bool
	yes     bool
	verbose bool
	noColor bool

	// Global state
	cfg    *config.Config
	conf   *alpm.Conf
	exec   *executor.Executor
	engine *alpm.Engine
	loader *store.Loader
)

// Build metadata - set at build time via ldflags
var (
	Version   = "0.1.0-dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tecarius",
	Short: "Package index and transaction orchestrator for pacman systems",
	Long: `Tecarius reads the pacman package databases directly, lets you
search and stage changes, resolves them into a complete transaction
plan, and drives pacman to execute it.

Browsing and planning never need privileges; only executing a
transaction does.

Examples:
  tecarius                      # Launch the interactive interface
  tecarius search firefox       # Fuzzy-search all databases
  tecarius install vim ripgrep  # Plan and install packages
  tecarius list --upgradable    # Show pending upgrades
  tecarius upgrade              # Sync databases and upgrade everything`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeApp()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "assume yes to all prompts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		ui.ErrorMsg("%v", err)
	}
	return err
}

// initializeApp sets up configuration and terminal output. The package
// core is built lazily by ensureCore so commands that never touch the
// databases (version, history) work on machines without pacman.
func initializeApp() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Apply global flag overrides
	if yes {
		cfg.General.AutoConfirm = true
	}
	if dryRun {
		cfg.General.DryRun = true
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if noColor {
		cfg.Output.Color = false
	}

	ui.Init(cfg.ShouldUseColor(), cfg.Output.Unicode)

	return nil
}

// ensureCore builds the database reader, loader and engine from the
// system pacman configuration. Idempotent.
func ensureCore(ctx context.Context) error {
	if loader != nil {
		return nil
	}

	var err error
	conf, err = alpm.LoadConf(ctx)
	if err != nil {
		return err
	}

	db := alpm.NewDatabase(conf.DBPath)
	loader = store.NewLoader(db, conf, cfg.Timeouts.LoadTimeout())
	exec = executor.New(cfg.General.DryRun, cfg.Output.Verbose)
	engine = alpm.NewEngine(exec)
	return nil
}

// loadSnapshot builds a fresh snapshot, warning about repositories that
// could not be read instead of failing outright.
func loadSnapshot(ctx context.Context) (*store.Snapshot, error) {
	if err := ensureCore(ctx); err != nil {
		return nil, err
	}

	sp := ui.NewSpinner("Loading package databases...")
	snap, err := loader.Load(ctx)
	sp.Stop()

	if err != nil {
		if !store.IsPartialLoad(err) {
			return nil, err
		}
		if loadErr, ok := store.AsLoadError(err); ok {
			for _, src := range loadErr.Sources {
				ui.WarningMsg("Could not read %s database; results may be incomplete", src)
			}
		}
	}
	return snap, nil
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print tecarius version",
	Run: func(cmd *cobra.Command, args []string) {
		ui.InfoMsg("tecarius version %s", Version)
		if Commit != "unknown" {
			ui.MutedMsg("  Commit: %s", Commit)
		}
		if BuildTime != "unknown" {
			ui.MutedMsg("  Built:  %s", BuildTime)
		}
	},
}
