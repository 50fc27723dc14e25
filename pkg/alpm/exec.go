package alpm

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/hbacelar8/tecarius/internal/executor"
)

// Engine drives the pacman binary for the operations that mutate the
// system: syncing repository databases and applying planned package
// changes. The plan it applies is authoritative, so per-package operations
// run with dependency checks disabled; ordering correctness is the
// planner's job.
type Engine struct {
	exec   *executor.Executor
	binary string
}

// NewEngine creates an engine around the given command executor.
func NewEngine(ex *executor.Executor) *Engine {
	return &Engine{exec: ex, binary: "pacman"}
}

// Available reports whether the pacman binary can be found.
func (e *Engine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Refresh re-syncs every configured repository database (pacman -Sy).
func (e *Engine) Refresh(ctx context.Context) error {
	stderr, err := e.exec.RunSudoWithStderr(ctx, e.binary, "-Sy", "--noconfirm")
	if err != nil {
		if engErr := ParseEngineError(stderr, err); engErr != nil {
			return engErr
		}
		return err
	}
	return nil
}

// ApplyAdd installs or upgrades one package from the given source.
// Dependency-reason additions are recorded as such in the local database
// via --asdeps.
func (e *Engine) ApplyAdd(ctx context.Context, src Source, id PackageIdentity, asDependency bool) error {
	args := []string{"-S", "--noconfirm", "--nodeps", "--nodeps"}
	if asDependency {
		args = append(args, "--asdeps")
	}
	args = append(args, installTarget(src, id))

	return e.run(ctx, args)
}

// installTarget renders the pacman -S target for an addition. A bare name
// lets pacman pick by repository order, which can substitute a different
// candidate than the one the caller resolved; qualifying the target as
// repo/name pins it to the source database.
func installTarget(src Source, id PackageIdentity) string {
	if !src.IsLocal() && src.Repo != "" {
		return src.Repo + "/" + id.Name
	}
	return id.Name
}

// ApplyRemove removes one package without cascading; the plan already
// carries every dependent removal as its own operation.
func (e *Engine) ApplyRemove(ctx context.Context, id PackageIdentity) error {
	return e.run(ctx, []string{"-R", "--noconfirm", "--nodeps", "--nodeps", id.Name})
}

// MarkExplicit flips the install reason of already-installed packages to
// explicitly installed.
func (e *Engine) MarkExplicit(ctx context.Context, ids []PackageIdentity) error {
	if len(ids) == 0 {
		return nil
	}
	args := []string{"-D", "--asexplicit"}
	for _, id := range ids {
		args = append(args, id.Name)
	}
	return e.run(ctx, args)
}

func (e *Engine) run(ctx context.Context, args []string) error {
	stderr, err := e.exec.RunSudoWithStderr(ctx, e.binary, args...)
	if err != nil {
		if engErr := ParseEngineError(stderr, err); engErr != nil {
			return engErr
		}
		return fmt.Errorf("pacman %v: %w", args, err)
	}
	return nil
}
