package bridge

import (
	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/plan"
	"github.com/hbacelar8/tecarius/pkg/search"
	"github.com/hbacelar8/tecarius/pkg/staging"
	"github.com/hbacelar8/tecarius/pkg/store"
	"github.com/hbacelar8/tecarius/pkg/transaction"
)

// State is the bridge's current activity. The rendering layer uses it to
// decide what to show and which commands make sense.
type State int

const (
	// StateIdle means no snapshot has been loaded yet.
	StateIdle State = iota
	// StateLoading means a snapshot load is in flight.
	StateLoading
	// StateReady means a snapshot is available and the bridge is idle.
	StateReady
	// StateSearching means a search unit is in flight.
	StateSearching
	// StatePlanning means a planning unit is in flight.
	StatePlanning
	// StatePlanAvailable means a plan is ready and awaiting confirmation.
	StatePlanAvailable
	// StatePlanFailed means the last planning unit failed.
	StatePlanFailed
	// StateExecuting means a transaction is running. Executing is never
	// preempted.
	StateExecuting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSearching:
		return "searching"
	case StatePlanning:
		return "planning"
	case StatePlanAvailable:
		return "plan available"
	case StatePlanFailed:
		return "plan failed"
	case StateExecuting:
		return "executing"
	}
	return "unknown"
}

// Command is a request from the rendering layer to the bridge.
type Command interface{ isCommand() }

// RefreshSnapshot reloads the package databases into a fresh snapshot.
// With Sync set, the repository databases are synced from the mirrors
// first.
type RefreshSnapshot struct {
	Sync bool
}

// SetSearchQuery starts a search over the current snapshot. A newer query
// supersedes an in-flight one.
type SetSearchQuery struct {
	Query string
	Scope search.Scope
}

// Stage records a package intent in the staging set.
type Stage struct {
	Identity alpm.PackageIdentity
	Intent   staging.Intent
}

// Unstage removes a package from the staging set.
type Unstage struct {
	Identity alpm.PackageIdentity
}

// RequestPlan resolves the staging set into a transaction plan.
type RequestPlan struct{}

// ConfirmExecute runs the current plan. Only valid in PlanAvailable.
type ConfirmExecute struct{}

// Cancel aborts the in-flight cancellable unit, or discards a pending
// plan. Ignored while executing.
type Cancel struct{}

func (RefreshSnapshot) isCommand() {}
func (SetSearchQuery) isCommand()  {}
func (Stage) isCommand()           {}
func (Unstage) isCommand()         {}
func (RequestPlan) isCommand()     {}
func (ConfirmExecute) isCommand()  {}
func (Cancel) isCommand()          {}

// Event is a notification from the bridge to the rendering layer.
type Event interface{ isEvent() }

// StateChanged reports a state machine transition. It is emitted before
// any event that depends on the new state.
type StateChanged struct {
	From State
	To   State
}

// SnapshotLoaded carries a freshly loaded snapshot. Failed lists sources
// that could not be read (partial load).
type SnapshotLoaded struct {
	Snapshot *store.Snapshot
	Failed   []alpm.Source
}

// SearchResults carries the outcome of the search unit for Query.
type SearchResults struct {
	Query   string
	Matches []search.Match
}

// StagingChanged carries the staging set after a mutation or
// revalidation. Dropped lists entries discarded by revalidation.
type StagingChanged struct {
	Entries []staging.Entry
	Dropped []staging.Dropped
}

// PlanReady carries a completed plan, executable or not.
type PlanReady struct {
	Plan *plan.TransactionPlan
}

// PlanFailed reports a planning unit failure.
type PlanFailed struct {
	Err error
}

// Execution forwards one transaction event.
type Execution struct {
	Event transaction.Event
}

// NoticeLevel grades a Notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

// Notice is an out-of-band message for the user.
type Notice struct {
	Level NoticeLevel
	Text  string
}

func (StateChanged) isEvent()   {}
func (SnapshotLoaded) isEvent() {}
func (SearchResults) isEvent()  {}
func (StagingChanged) isEvent() {}
func (PlanReady) isEvent()      {}
func (PlanFailed) isEvent()     {}
func (Execution) isEvent()      {}
func (Notice) isEvent()         {}
