// Package bridge is the single-owner event loop between the rendering
// layers and the package core. One goroutine owns the snapshot, the
// staging set and the background units; commands arrive on a channel and
// every state change leaves as an event. Background units (load, search,
// plan, execute) run in their own goroutines and post completions back to
// the owner, so no state is ever touched concurrently.
package bridge

import (
	"context"
	"fmt"

	"github.com/hbacelar8/tecarius/internal/history"
	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/plan"
	"github.com/hbacelar8/tecarius/pkg/search"
	"github.com/hbacelar8/tecarius/pkg/staging"
	"github.com/hbacelar8/tecarius/pkg/store"
	"github.com/hbacelar8/tecarius/pkg/transaction"
)

// SnapshotLoader builds snapshots of the package databases. Satisfied by
// *store.Loader.
type SnapshotLoader interface {
	Load(ctx context.Context) (*store.Snapshot, error)
}

// Refresher syncs the repository databases from the mirrors. Satisfied by
// *alpm.Engine.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// PlanExecutor runs transaction plans. Satisfied by
// *transaction.Executor.
type PlanExecutor interface {
	Execute(ctx context.Context, p *plan.TransactionPlan) (<-chan transaction.Event, error)
}

// Options wires the bridge's collaborators. Journal is optional; when nil
// no transaction history is recorded.
type Options struct {
	Loader    SnapshotLoader
	Refresher Refresher
	Planner   *plan.Planner
	Executor  PlanExecutor
	Journal   *history.Store
}

// Bridge owns the orchestrator state and mediates between commands and
// events. Create with New, drive with Send, consume Events, and Stop when
// done.
type Bridge struct {
	loader    SnapshotLoader
	refresher Refresher
	planner   *plan.Planner
	exec      PlanExecutor
	journal   *history.Store

	cmds        chan Command
	completions chan func(*Bridge)
	events      chan Event

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Owner-loop state. Only the loop goroutine reads or writes these.
	state       State
	snap        *store.Snapshot
	stagingSet  *staging.Set
	currentPlan *plan.TransactionPlan

	// Per-kind unit bookkeeping: a sequence number identifies the newest
	// unit, stale completions are discarded on arrival.
	loadSeq   uint64
	searchSeq uint64
	planSeq   uint64

	cancelLoad   context.CancelFunc
	cancelSearch context.CancelFunc
	cancelPlan   context.CancelFunc
}

// New creates a bridge. Commands sent before Start are queued and handled
// once the owner loop runs.
func New(opts Options) *Bridge {
	b := &Bridge{
		loader:      opts.Loader,
		refresher:   opts.Refresher,
		planner:     opts.Planner,
		exec:        opts.Executor,
		journal:     opts.Journal,
		cmds:        make(chan Command, 16),
		completions: make(chan func(*Bridge), 16),
		events:      make(chan Event, 256),
		done:        make(chan struct{}),
		state:       StateIdle,
		stagingSet:  staging.NewSet(),
	}
	// The bridge context exists from construction so Send and the unit
	// helpers never race Start.
	b.ctx, b.cancel = context.WithCancel(context.Background())
	return b
}

// Start launches the owner loop. Cancelling ctx stops the bridge the same
// way Stop does.
func (b *Bridge) Start(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			b.cancel()
		case <-b.ctx.Done():
		}
	}()
	go b.loop()
}

// Stop cancels every unit and shuts the loop down. The events channel is
// closed once the loop exits.
func (b *Bridge) Stop() {
	b.cancel()
	<-b.done
}

// Send submits a command to the owner loop.
func (b *Bridge) Send(cmd Command) {
	select {
	case b.cmds <- cmd:
	case <-b.ctx.Done():
	}
}

// Events returns the bridge's event stream.
func (b *Bridge) Events() <-chan Event {
	return b.events
}

func (b *Bridge) loop() {
	defer close(b.done)
	defer close(b.events)

	for {
		select {
		case <-b.ctx.Done():
			return
		case cmd := <-b.cmds:
			b.handle(cmd)
		case fn := <-b.completions:
			fn(b)
		}
	}
}

// post hands a completion to the owner loop from a unit goroutine.
func (b *Bridge) post(fn func(*Bridge)) {
	select {
	case b.completions <- fn:
	case <-b.ctx.Done():
	}
}

func (b *Bridge) emit(ev Event) {
	select {
	case b.events <- ev:
	case <-b.ctx.Done():
	}
}

func (b *Bridge) setState(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.emit(StateChanged{From: from, To: to})
}

func (b *Bridge) notice(level NoticeLevel, format string, args ...any) {
	b.emit(Notice{Level: level, Text: fmt.Sprintf(format, args...)})
}

func (b *Bridge) handle(cmd Command) {
	// Execution is non-preemptable: while it runs, only events flow.
	if b.state == StateExecuting {
		switch cmd.(type) {
		case Cancel:
			b.notice(NoticeInfo, "a transaction is running; it cannot be cancelled")
		default:
			b.notice(NoticeError, "a transaction is running; command rejected")
		}
		return
	}

	switch c := cmd.(type) {
	case RefreshSnapshot:
		b.startLoad(c.Sync)
	case SetSearchQuery:
		b.startSearch(c.Query, c.Scope)
	case Stage:
		b.stage(c.Identity, c.Intent)
	case Unstage:
		b.unstage(c.Identity)
	case RequestPlan:
		b.startPlan()
	case ConfirmExecute:
		b.startExecute()
	case Cancel:
		b.cancelCurrent()
	}
}

// invalidatePlan discards any pending or in-flight plan. Called whenever
// the staging set changes under it.
func (b *Bridge) invalidatePlan() {
	if b.cancelPlan != nil {
		b.cancelPlan()
		b.cancelPlan = nil
	}
	b.planSeq++
	b.currentPlan = nil
	if b.state == StatePlanning || b.state == StatePlanAvailable || b.state == StatePlanFailed {
		b.setState(StateReady)
	}
}

func (b *Bridge) startLoad(sync bool) {
	if b.cancelLoad != nil {
		b.cancelLoad()
	}
	b.loadSeq++
	seq := b.loadSeq

	ctx, cancel := context.WithCancel(b.ctx)
	b.cancelLoad = cancel
	b.setState(StateLoading)

	go func() {
		var syncErr error
		if sync && b.refresher != nil {
			syncErr = b.refresher.Refresh(ctx)
		}
		snap, err := b.loader.Load(ctx)
		b.post(func(br *Bridge) { br.finishLoad(seq, sync, snap, err, syncErr) })
	}()
}

func (b *Bridge) finishLoad(seq uint64, synced bool, snap *store.Snapshot, err, syncErr error) {
	if seq != b.loadSeq {
		return // superseded
	}
	b.cancelLoad = nil

	if synced {
		b.recordSync(syncErr)
	}
	if syncErr != nil {
		b.notice(NoticeError, "database sync failed: %v", syncErr)
	}

	if snap == nil {
		b.notice(NoticeError, "loading package databases: %v", err)
		if b.snap != nil {
			b.setState(StateReady)
		} else {
			b.setState(StateIdle)
		}
		return
	}

	var failed []alpm.Source
	if loadErr, ok := store.AsLoadError(err); ok && loadErr.Kind == store.LoadPartial {
		failed = loadErr.Sources
		b.notice(NoticeWarning, "%v", loadErr)
	}

	b.snap = snap
	b.invalidatePlan()
	dropped := b.stagingSet.Revalidate(snap)

	b.emit(SnapshotLoaded{Snapshot: snap, Failed: failed})
	b.emit(StagingChanged{Entries: b.stagingSet.List(), Dropped: dropped})
	b.setState(StateReady)
}

func (b *Bridge) startSearch(query string, scope search.Scope) {
	if b.snap == nil {
		b.notice(NoticeError, "no snapshot loaded")
		return
	}
	if b.state == StateLoading {
		b.notice(NoticeInfo, "snapshot is loading")
		return
	}
	if b.cancelSearch != nil {
		b.cancelSearch()
	}
	b.searchSeq++
	seq := b.searchSeq
	snap := b.snap

	ctx, cancel := context.WithCancel(b.ctx)
	b.cancelSearch = cancel
	b.setState(StateSearching)

	go func() {
		matches, err := search.Filter(ctx, snap, query, scope)
		b.post(func(br *Bridge) { br.finishSearch(seq, query, matches, err) })
	}()
}

func (b *Bridge) finishSearch(seq uint64, query string, matches []search.Match, err error) {
	if seq != b.searchSeq || b.state != StateSearching {
		return // superseded
	}
	b.cancelSearch = nil

	if err != nil {
		// Only cancellation reaches here; the replacement unit reports.
		return
	}
	b.emit(SearchResults{Query: query, Matches: matches})
	b.setState(StateReady)
}

func (b *Bridge) stage(id alpm.PackageIdentity, intent staging.Intent) {
	if b.snap == nil {
		b.notice(NoticeError, "no snapshot loaded")
		return
	}
	if err := b.stagingSet.Stage(b.snap, id, intent); err != nil {
		b.notice(NoticeError, "%v", err)
		return
	}
	b.invalidatePlan()
	b.emit(StagingChanged{Entries: b.stagingSet.List()})
}

func (b *Bridge) unstage(id alpm.PackageIdentity) {
	b.stagingSet.Unstage(id)
	b.invalidatePlan()
	b.emit(StagingChanged{Entries: b.stagingSet.List()})
}

func (b *Bridge) startPlan() {
	if b.snap == nil {
		b.notice(NoticeError, "no snapshot loaded")
		return
	}
	if b.state == StateLoading {
		b.notice(NoticeInfo, "snapshot is loading")
		return
	}
	if b.stagingSet.Len() == 0 {
		b.notice(NoticeInfo, "nothing staged")
		return
	}
	if b.cancelPlan != nil {
		b.cancelPlan()
	}
	b.planSeq++
	seq := b.planSeq
	snap := b.snap
	entries := b.stagingSet.List()

	ctx, cancel := context.WithCancel(b.ctx)
	b.cancelPlan = cancel
	b.setState(StatePlanning)

	go func() {
		p, err := b.planner.Plan(ctx, snap, entries)
		b.post(func(br *Bridge) { br.finishPlan(seq, p, err) })
	}()
}

func (b *Bridge) finishPlan(seq uint64, p *plan.TransactionPlan, err error) {
	if seq != b.planSeq || b.state != StatePlanning {
		return // superseded
	}
	b.cancelPlan = nil

	if err != nil {
		b.setState(StatePlanFailed)
		b.emit(PlanFailed{Err: err})
		return
	}
	b.currentPlan = p
	b.setState(StatePlanAvailable)
	b.emit(PlanReady{Plan: p})
}

func (b *Bridge) startExecute() {
	if b.state != StatePlanAvailable || b.currentPlan == nil {
		b.notice(NoticeError, "no plan to execute")
		return
	}
	p := b.currentPlan
	if !p.Executable() {
		b.notice(NoticeError, "plan has unresolved problems and cannot be executed")
		return
	}

	events, err := b.exec.Execute(b.ctx, p)
	if err != nil {
		b.notice(NoticeError, "starting transaction: %v", err)
		return
	}

	b.setState(StateExecuting)

	go func() {
		var terminal transaction.Event
		for ev := range events {
			if ev.Kind == transaction.EventDone || ev.Kind == transaction.EventFailed {
				terminal = ev
			}
			b.post(func(br *Bridge) { br.emit(Execution{Event: ev}) })
		}
		b.post(func(br *Bridge) { br.finishExecute(p, terminal) })
	}()
}

func (b *Bridge) finishExecute(p *plan.TransactionPlan, terminal transaction.Event) {
	b.recordJournal(p, terminal)

	b.stagingSet.Clear()
	b.currentPlan = nil
	b.emit(StagingChanged{Entries: b.stagingSet.List()})

	// The database changed (or may have, on failure); reload before
	// anything else is staged or planned.
	b.startLoad(false)
}

func (b *Bridge) recordSync(syncErr error) {
	if b.journal == nil {
		return
	}
	entry := history.NewEntry(history.OpSync)
	if syncErr != nil {
		entry.MarkFailed(syncErr)
	} else {
		entry.MarkSuccess()
	}
	if err := b.journal.Record(entry); err != nil {
		b.notice(NoticeWarning, "recording history: %v", err)
	}
}

func (b *Bridge) recordJournal(p *plan.TransactionPlan, terminal transaction.Event) {
	if b.journal == nil {
		return
	}

	adds := p.Additions()
	removes := p.Removals()

	op := history.OpInstall
	switch {
	case len(adds) == 0 && len(removes) > 0:
		op = history.OpRemove
	case len(adds) > 0 && b.allUpgrades(adds):
		op = history.OpUpgrade
	}

	entry := history.NewEntry(op)
	for _, add := range adds {
		entry.Installed = append(entry.Installed, add.Record.Name+" "+add.Record.Version)
	}
	for _, rem := range removes {
		entry.Removed = append(entry.Removed, rem.Record.Name+" "+rem.Record.Version)
	}
	for _, id := range p.Explicit {
		entry.Marked = append(entry.Marked, id.Name)
	}

	if terminal.Kind == transaction.EventDone {
		entry.MarkSuccess()
	} else if terminal.Err != nil {
		entry.MarkFailed(terminal.Err)
	}

	if err := b.journal.Record(entry); err != nil {
		b.notice(NoticeWarning, "recording history: %v", err)
	}
}

// allUpgrades reports whether every addition replaces an installed
// package, which the journal records as an upgrade.
func (b *Bridge) allUpgrades(adds []plan.PlannedOperation) bool {
	if b.snap == nil {
		return false
	}
	for _, add := range adds {
		if b.snap.Local(add.Record.Name) == nil {
			return false
		}
	}
	return true
}

func (b *Bridge) cancelCurrent() {
	switch b.state {
	case StateLoading:
		if b.cancelLoad != nil {
			b.cancelLoad()
			b.cancelLoad = nil
		}
		b.loadSeq++
		if b.snap != nil {
			b.setState(StateReady)
		} else {
			b.setState(StateIdle)
		}
	case StateSearching:
		if b.cancelSearch != nil {
			b.cancelSearch()
			b.cancelSearch = nil
		}
		b.searchSeq++
		b.setState(StateReady)
	case StatePlanning, StatePlanAvailable, StatePlanFailed:
		b.invalidatePlan()
	}
}
