package transaction

import (
	"context"
	"errors"

	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/plan"
)

var (
	// ErrNotExecutable is returned when the plan carries unresolved
	// problems.
	ErrNotExecutable = errors.New("plan has unresolved problems")

	// ErrEmptyPlan is returned when the plan performs no work.
	ErrEmptyPlan = errors.New("plan is empty")
)

// Engine applies individual package operations. Satisfied by *alpm.Engine;
// tests substitute a fake.
type Engine interface {
	ApplyAdd(ctx context.Context, src alpm.Source, id alpm.PackageIdentity, asDependency bool) error
	ApplyRemove(ctx context.Context, id alpm.PackageIdentity) error
	MarkExplicit(ctx context.Context, ids []alpm.PackageIdentity) error
}

// Privileges acquires the elevated credentials a transaction needs before
// any operation runs.
type Privileges interface {
	Acquire(ctx context.Context) error
}

// Executor runs transaction plans.
type Executor struct {
	engine Engine
	priv   Privileges
}

// NewExecutor creates an executor over the given engine and privilege
// collaborator.
func NewExecutor(engine Engine, priv Privileges) *Executor {
	return &Executor{engine: engine, priv: priv}
}

// Execute runs the plan in a background goroutine and returns its event
// stream. The stream is closed after a terminal Done or Failed event.
//
// Cancellation through ctx is honored up to the first PackageStarted
// event; once a package operation has begun the transaction runs to
// completion regardless of ctx.
func (x *Executor) Execute(ctx context.Context, p *plan.TransactionPlan) (<-chan Event, error) {
	if p == nil || p.Empty() {
		return nil, ErrEmptyPlan
	}
	if !p.Executable() {
		return nil, ErrNotExecutable
	}

	// Buffered for the whole stream so emitting never blocks on a slow
	// consumer mid-transaction.
	events := make(chan Event, 2*len(p.Operations)+4)
	go x.run(ctx, p, events)
	return events, nil
}

func (x *Executor) run(ctx context.Context, p *plan.TransactionPlan, events chan<- Event) {
	defer close(events)

	fail := func(err *ExecutionError) {
		events <- Event{Kind: EventFailed, Err: err}
	}

	if err := x.priv.Acquire(ctx); err != nil {
		fail(&ExecutionError{Kind: ErrorPrivilegeDenied, Err: err})
		return
	}

	// Last cancellation point. Nothing has touched the system yet.
	if err := ctx.Err(); err != nil {
		fail(&ExecutionError{Kind: ErrorInterrupted, Err: err})
		return
	}

	// From here on the transaction is committed; engine calls run under a
	// context detached from caller cancellation.
	runCtx := context.WithoutCancel(ctx)

	total := len(p.Operations)
	for i, op := range p.Operations {
		id := op.Identity()
		events <- Event{Kind: EventPackageStarted, Package: id, Action: op.Action}

		var err error
		switch op.Action {
		case plan.ActionRemove:
			err = x.engine.ApplyRemove(runCtx, id)
		case plan.ActionAdd:
			err = x.engine.ApplyAdd(runCtx, op.Record.Source, id, op.Reason == plan.ReasonDependency)
		}
		if err != nil {
			fail(classify(id, err))
			return
		}

		events <- Event{Kind: EventPackageFinished, Package: id, Action: op.Action}
		events <- Event{Kind: EventProgress, Completed: i + 1, Total: total}
	}

	if len(p.Explicit) > 0 {
		if err := x.engine.MarkExplicit(runCtx, p.Explicit); err != nil {
			fail(classify(alpm.PackageIdentity{}, err))
			return
		}
	}

	events <- Event{Kind: EventDone}
}
