// Package plan turns a staging set into a concrete, dependency-complete
// transaction plan by resolving against a snapshot. Planning is read-only:
// it never mutates the snapshot or the staging set, and identical inputs
// always produce identical plans.
package plan

import (
	"errors"
	"fmt"

	"github.com/hbacelar8/tecarius/pkg/alpm"
)

// Action is what a planned operation does to the system.
type Action int

const (
	ActionAdd Action = iota
	ActionRemove
)

func (a Action) String() string {
	if a == ActionRemove {
		return "remove"
	}
	return "add"
}

// Reason records why an operation is part of the plan.
type Reason int

const (
	// ReasonDirect operations were staged by the user.
	ReasonDirect Reason = iota
	// ReasonDependency operations were pulled in by resolution: required
	// dependencies for additions, stranded dependents for removals.
	ReasonDependency
)

func (r Reason) String() string {
	if r == ReasonDependency {
		return "dependency"
	}
	return "direct"
}

// PlannedOperation is one step of the transaction.
type PlannedOperation struct {
	Record *alpm.PackageRecord
	Action Action
	Reason Reason
}

// Identity returns the operation's package identity.
func (op PlannedOperation) Identity() alpm.PackageIdentity {
	return op.Record.Identity()
}

// ProblemKind classifies an unresolved planning problem.
type ProblemKind int

const (
	// ProblemUnresolvedDependency means a required dependency has no
	// surviving or plannable provider.
	ProblemUnresolvedDependency ProblemKind = iota
	// ProblemConflict means a planned addition conflicts with another
	// planned addition or with an installed package not being removed.
	ProblemConflict
)

// Problem is one unresolved issue found during planning. A plan carrying
// problems is returned normally so the interface can display it, but it
// must never be executed.
type Problem struct {
	Kind    ProblemKind
	Subject alpm.PackageIdentity // the package the problem is about
	Other   alpm.PackageIdentity // the conflicting package, for conflicts
	Dep     alpm.DepSpec         // the failing spec, for unresolved dependencies
}

func (p Problem) String() string {
	switch p.Kind {
	case ProblemConflict:
		return fmt.Sprintf("%s conflicts with %s", p.Subject.Name, p.Other.Name)
	default:
		return fmt.Sprintf("%s requires %s, which nothing provides", p.Subject.Name, p.Dep)
	}
}

// TransactionPlan is the resolved transaction: removals first, then
// additions in dependency order, plus explicit-mark requests and any
// problems that block execution.
type TransactionPlan struct {
	Operations []PlannedOperation
	Problems   []Problem
	Explicit   []alpm.PackageIdentity
}

// Executable reports whether the plan may be handed to the executor: it
// must do something and carry no unresolved problems.
func (p *TransactionPlan) Executable() bool {
	return len(p.Problems) == 0 && !p.Empty()
}

// Empty reports whether the plan performs no work at all.
func (p *TransactionPlan) Empty() bool {
	return len(p.Operations) == 0 && len(p.Explicit) == 0
}

// Additions returns the planned add operations in plan order.
func (p *TransactionPlan) Additions() []PlannedOperation {
	return p.byAction(ActionAdd)
}

// Removals returns the planned remove operations in plan order.
func (p *TransactionPlan) Removals() []PlannedOperation {
	return p.byAction(ActionRemove)
}

func (p *TransactionPlan) byAction(action Action) []PlannedOperation {
	var out []PlannedOperation
	for _, op := range p.Operations {
		if op.Action == action {
			out = append(out, op)
		}
	}
	return out
}

// DownloadSize sums the download sizes of all planned additions.
func (p *TransactionPlan) DownloadSize() int64 {
	var total int64
	for _, op := range p.Operations {
		if op.Action == ActionAdd {
			total += op.Record.DownloadSize
		}
	}
	return total
}

// InstalledDelta is the net change in installed size the plan causes.
func (p *TransactionPlan) InstalledDelta() int64 {
	var delta int64
	for _, op := range p.Operations {
		if op.Action == ActionAdd {
			delta += op.Record.InstalledSize
		} else {
			delta -= op.Record.InstalledSize
		}
	}
	return delta
}

// ErrTimedOut is wrapped by PlanError when planning exceeds its deadline.
var ErrTimedOut = errors.New("planning timed out")

// PlanError is a failure of the planning run itself. Unresolved
// dependencies and conflicts are not errors; they travel as Problems on
// the returned plan.
type PlanError struct {
	Err error
}

func (e *PlanError) Error() string { return "planning failed: " + e.Err.Error() }

func (e *PlanError) Unwrap() error { return e.Err }
