package plan

import (
	"context"
	"errors"
	"time"

	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/staging"
	"github.com/hbacelar8/tecarius/pkg/store"
)

// Planner resolves staging sets into transaction plans.
type Planner struct {
	timeout time.Duration // zero means no deadline
}

// NewPlanner creates a Planner. A non-zero timeout bounds every Plan call,
// since resolution may touch repository metadata.
func NewPlanner(timeout time.Duration) *Planner {
	return &Planner{timeout: timeout}
}

// Plan resolves the staged entries against the snapshot.
//
// Removals come first: every staged removal, then the transitive set of
// installed packages left without any provider for one of their
// dependencies. Additions follow in dependency order, dependencies before
// dependents. Candidates are chosen by highest version with repository
// priority breaking ties; capability providers by repository priority
// first, then version. Unresolved dependencies and conflicts become
// Problems on the plan, never silent drops.
func (pl *Planner) Plan(ctx context.Context, snap *store.Snapshot, entries []staging.Entry) (*TransactionPlan, error) {
	if pl.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pl.timeout)
		defer cancel()
	}

	r := &resolution{
		ctx:     ctx,
		snap:    snap,
		plan:    &TransactionPlan{},
		removed: make(map[string]bool),
		added:   make(map[string]*alpm.PackageRecord),
	}

	for _, entry := range entries {
		if err := r.check(); err != nil {
			return nil, err
		}
		switch entry.Intent {
		case staging.IntentRemove:
			r.stageRemoval(entry.Identity)
		case staging.IntentMarkExplicit:
			r.plan.Explicit = append(r.plan.Explicit, entry.Identity)
		}
	}

	if err := r.cascadeRemovals(); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.Intent != staging.IntentInstall {
			continue
		}
		if err := r.resolveInstall(entry.Identity); err != nil {
			return nil, err
		}
	}

	if err := r.detectConflicts(); err != nil {
		return nil, err
	}

	return r.plan, nil
}

// resolution is the working state of one Plan call.
type resolution struct {
	ctx  context.Context
	snap *store.Snapshot
	plan *TransactionPlan

	removed  map[string]bool                // names scheduled for removal
	added    map[string]*alpm.PackageRecord // names scheduled for addition
	visiting map[string]bool                // DFS stack, per top-level install
}

// check maps context expiry to the plan error taxonomy. Called at bounded
// intervals so resolution over large package sets stays cancellable.
func (r *resolution) check() error {
	switch err := r.ctx.Err(); {
	case errors.Is(err, context.DeadlineExceeded):
		return &PlanError{Err: ErrTimedOut}
	case err != nil:
		return &PlanError{Err: err}
	}
	return nil
}

func (r *resolution) stageRemoval(id alpm.PackageIdentity) {
	local := r.snap.Local(id.Name)
	if local == nil {
		// Revalidation normally prevents this; don't plan blind.
		r.plan.Problems = append(r.plan.Problems, Problem{
			Kind:    ProblemUnresolvedDependency,
			Subject: id,
			Dep:     alpm.DepSpec{Name: id.Name},
		})
		return
	}
	if r.removed[local.Name] {
		return
	}
	r.removed[local.Name] = true
	r.plan.Operations = append(r.plan.Operations, PlannedOperation{
		Record: local,
		Action: ActionRemove,
		Reason: ReasonDirect,
	})
}

// cascadeRemovals pulls in installed packages stranded by the staged
// removals: dependents whose dependency has no surviving provider. Runs to
// a fixpoint since each wave can strand further dependents.
func (r *resolution) cascadeRemovals() error {
	if len(r.removed) == 0 {
		return nil
	}

	for {
		changed := false
		for _, rec := range r.snap.Installed() {
			if err := r.check(); err != nil {
				return err
			}
			if r.removed[rec.Name] {
				continue
			}
			for _, dep := range rec.Depends {
				if r.dependencySurvives(dep) {
					continue
				}
				// Only cascade when the loss is caused by the removal set;
				// a dependency that never had a provider is not our doing.
				if !r.removalCausedLoss(dep) {
					continue
				}
				r.removed[rec.Name] = true
				r.plan.Operations = append(r.plan.Operations, PlannedOperation{
					Record: rec,
					Action: ActionRemove,
					Reason: ReasonDependency,
				})
				changed = true
				break
			}
		}
		if !changed {
			return nil
		}
	}
}

// dependencySurvives reports whether dep still has a provider after the
// transaction: an installed package not being removed, or a planned add.
func (r *resolution) dependencySurvives(dep alpm.DepSpec) bool {
	for _, provider := range r.snap.LocalProviders(dep) {
		if !r.removed[provider.Name] {
			return true
		}
	}
	for _, rec := range r.added {
		if rec.Satisfies(dep) {
			return true
		}
	}
	return false
}

// removalCausedLoss reports whether at least one provider of dep is
// scheduled for removal.
func (r *resolution) removalCausedLoss(dep alpm.DepSpec) bool {
	for _, provider := range r.snap.LocalProviders(dep) {
		if r.removed[provider.Name] {
			return true
		}
	}
	return false
}

// resolveInstall plans a staged installation and its dependency closure.
func (r *resolution) resolveInstall(id alpm.PackageIdentity) error {
	candidate := r.snap.BestCandidate(id.Name)
	if candidate == nil {
		r.plan.Problems = append(r.plan.Problems, Problem{
			Kind:    ProblemUnresolvedDependency,
			Subject: id,
			Dep:     alpm.DepSpec{Name: id.Name},
		})
		return nil
	}

	r.visiting = make(map[string]bool)
	return r.visit(candidate, ReasonDirect)
}

// visit resolves one candidate depth-first, appending it after its
// dependencies so additions come out in dependency order. Cycles are
// tolerated: a package already on the DFS stack counts as satisfied.
func (r *resolution) visit(candidate *alpm.PackageRecord, reason Reason) error {
	if err := r.check(); err != nil {
		return err
	}
	if r.visiting[candidate.Name] || r.added[candidate.Name] != nil {
		return nil
	}
	r.visiting[candidate.Name] = true
	defer delete(r.visiting, candidate.Name)

	for _, dep := range candidate.Depends {
		if r.dependencySatisfied(dep) {
			continue
		}

		provider := r.chooseProvider(dep)
		if provider == nil {
			r.plan.Problems = append(r.plan.Problems, Problem{
				Kind:    ProblemUnresolvedDependency,
				Subject: candidate.Identity(),
				Dep:     dep,
			})
			continue
		}
		if err := r.visit(provider, ReasonDependency); err != nil {
			return err
		}
	}

	r.added[candidate.Name] = candidate
	r.plan.Operations = append(r.plan.Operations, PlannedOperation{
		Record: candidate,
		Action: ActionAdd,
		Reason: reason,
	})
	return nil
}

// dependencySatisfied reports whether dep needs no new operation: an
// installed provider survives the removals, a planned add provides it, or
// a package currently being resolved does (cycle).
func (r *resolution) dependencySatisfied(dep alpm.DepSpec) bool {
	if r.visiting[dep.Name] {
		return true
	}
	return r.dependencySurvives(dep)
}

// chooseProvider picks the sync record to satisfy a dependency. Direct
// name matches prefer the highest version with repository priority as the
// tie break; capability providers follow configured repository priority
// first. The priority-first rule for capabilities mirrors how pacman picks
// the first repository offering a provider.
func (r *resolution) chooseProvider(dep alpm.DepSpec) *alpm.PackageRecord {
	if best := r.snap.BestCandidate(dep.Name); best != nil && best.Satisfies(dep) {
		return best
	}
	providers := r.snap.Providers(dep)
	if len(providers) == 0 {
		return nil
	}
	return providers[0]
}

// detectConflicts checks every planned addition against the system as it
// will look after the transaction. Conflicts become problems; they are
// never resolved by silently dropping an operation.
func (r *resolution) detectConflicts() error {
	seen := make(map[[2]string]bool)
	report := func(subject, other alpm.PackageIdentity) {
		key := [2]string{subject.Name, other.Name}
		if subject.Name > other.Name {
			key = [2]string{other.Name, subject.Name}
		}
		if seen[key] {
			return
		}
		seen[key] = true
		r.plan.Problems = append(r.plan.Problems, Problem{
			Kind:    ProblemConflict,
			Subject: subject,
			Other:   other,
		})
	}

	var adds []*alpm.PackageRecord
	for _, op := range r.plan.Operations {
		if op.Action == ActionAdd {
			adds = append(adds, op.Record)
		}
	}

	survivors := make([]*alpm.PackageRecord, 0)
	for _, rec := range r.snap.Installed() {
		if !r.removed[rec.Name] && r.added[rec.Name] == nil {
			// Upgrades replace the installed record, so it drops out of
			// the conflict surface.
			survivors = append(survivors, rec)
		}
	}

	for _, add := range adds {
		if err := r.check(); err != nil {
			return err
		}
		for _, conflict := range add.Conflicts {
			for _, other := range adds {
				if other.Name != add.Name && other.Satisfies(conflict) {
					report(add.Identity(), other.Identity())
				}
			}
			for _, installed := range survivors {
				if installed.Name != add.Name && installed.Satisfies(conflict) {
					report(add.Identity(), installed.Identity())
				}
			}
		}
		// Installed packages may declare the conflict from their side.
		for _, installed := range survivors {
			for _, conflict := range installed.Conflicts {
				if add.Satisfies(conflict) && installed.Name != add.Name {
					report(add.Identity(), installed.Identity())
				}
			}
		}
	}
	return nil
}
