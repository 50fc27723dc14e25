package cli

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"

	"github.com/hbacelar8/tecarius/internal/history"
	"github.com/hbacelar8/tecarius/internal/ui"
	"github.com/hbacelar8/tecarius/pkg/plan"
	"github.com/hbacelar8/tecarius/pkg/staging"
	"github.com/hbacelar8/tecarius/pkg/store"
	"github.com/hbacelar8/tecarius/pkg/transaction"
)

// runTransaction resolves the staged entries into a plan, shows it, asks
// for confirmation, executes it and records the outcome in the journal.
func runTransaction(ctx context.Context, snap *store.Snapshot, entries []staging.Entry, op history.Operation) error {
	planner := plan.NewPlanner(cfg.Timeouts.PlanTimeout())

	sp := ui.NewSpinner("Resolving transaction...")
	p, err := planner.Plan(ctx, snap, entries)
	sp.Stop()
	if err != nil {
		return err
	}

	if p.Empty() {
		ui.InfoMsg("Nothing to do")
		return nil
	}

	ui.PrintPlan(p)

	if len(p.Problems) > 0 {
		return ErrUnresolvable
	}

	if !cfg.General.AutoConfirm && !cfg.General.DryRun {
		confirmed, err := ui.Confirm("Proceed with transaction?", true)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	return executePlan(ctx, p, op)
}

// executePlan drives the transaction executor and renders its event
// stream as a progress bar.
func executePlan(ctx context.Context, p *plan.TransactionPlan, op history.Operation) error {
	entry := history.NewEntry(op)
	for _, planned := range p.Operations {
		item := planned.Record.Name + " " + planned.Record.Version
		if planned.Action == plan.ActionRemove {
			entry.Removed = append(entry.Removed, item)
		} else {
			entry.Installed = append(entry.Installed, item)
		}
	}
	for _, id := range p.Explicit {
		entry.Marked = append(entry.Marked, id.Name)
	}

	texec := transaction.NewExecutor(engine, exec)
	events, err := texec.Execute(ctx, p)
	if err != nil {
		return err
	}

	total := len(p.Operations)
	var bar *progressbar.ProgressBar
	if total > 0 && !cfg.General.DryRun {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Executing transaction"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var execErr error
	for ev := range events {
		switch ev.Kind {
		case transaction.EventPackageStarted:
			if bar != nil {
				verb := "installing"
				if ev.Action == plan.ActionRemove {
					verb = "removing"
				}
				bar.Describe(fmt.Sprintf("%s %s", verb, ev.Package.Name))
			}
		case transaction.EventProgress:
			if bar != nil {
				_ = bar.Set(ev.Completed)
			}
		case transaction.EventWarning:
			ui.WarningMsg("%s", ev.Message)
		case transaction.EventFailed:
			if ev.Err != nil {
				execErr = ev.Err
			} else {
				execErr = fmt.Errorf("transaction failed")
			}
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if execErr != nil {
		entry.MarkFailed(execErr)
		ui.ErrorMsg("Transaction failed: %v", execErr)
	} else {
		entry.MarkSuccess()
		ui.SuccessMsg("Transaction complete: %s", entry.Summary())
	}

	// A broken journal must never block a transaction.
	if journal, journalErr := history.Open(); journalErr == nil {
		_ = journal.Record(entry) //nolint:errcheck
		_ = journal.Close()       //nolint:errcheck
	}

	return execErr
}
