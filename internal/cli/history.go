package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hbacelar8/tecarius/internal/history"
	"github.com/hbacelar8/tecarius/internal/ui"
)

var (
	historyLimit int
	historyPrune int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the transaction journal",
	Long: `Display the transactions tecarius has executed, newest first.

Examples:
  tecarius history              # Show recent transactions
  tecarius history -l 20        # Show the last 20
  tecarius history --prune 90   # Drop entries older than 90 days
  tecarius history --clear      # Drop the whole journal`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 10, "number of entries to show")
	historyCmd.Flags().IntVar(&historyPrune, "prune", 0, "remove entries older than this many days")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "remove all journal entries")
}

func runHistory(cmd *cobra.Command, args []string) error {
	journal, err := history.Open()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer journal.Close()

	if historyClear {
		if !cfg.General.AutoConfirm {
			confirmed, err := ui.Confirm("Remove the entire transaction journal?", false)
			if err != nil || !confirmed {
				return ErrAborted
			}
		}
		if err := journal.Clear(); err != nil {
			return err
		}
		ui.SuccessMsg("Journal cleared")
		return nil
	}

	if historyPrune > 0 {
		deleted, err := journal.Prune(time.Duration(historyPrune) * 24 * time.Hour)
		if err != nil {
			return err
		}
		ui.SuccessMsg("Pruned %d journal entries", deleted)
		return nil
	}

	entries, err := journal.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(entries) == 0 {
		ui.MutedMsg("No transactions recorded")
		return nil
	}

	ui.HeaderMsg("Transaction History")

	for i, entry := range entries {
		fmt.Printf("%2d. %s %s\n",
			i+1,
			ui.Muted.Sprint(entry.FormatTime()),
			entry.Summary(),
		)
		if entry.Error != "" {
			ui.MutedMsg("    Error: %s", entry.Error)
		}
		if verbose {
			for _, name := range entry.Installed {
				fmt.Printf("    %s %s\n", ui.Green(ui.SymbolAdd), name)
			}
			for _, name := range entry.Removed {
				fmt.Printf("    %s %s\n", ui.Red(ui.SymbolRemove), name)
			}
			for _, name := range entry.Marked {
				fmt.Printf("    %s %s\n", ui.Cyan(ui.SymbolKeep), name)
			}
		}
	}

	total, _ := journal.Count() //nolint:errcheck
	ui.MutedMsg("\nShowing %d of %d total entries", len(entries), total)

	return nil
}
