// Package executor handles command execution with privilege escalation support.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Executor handles command execution with optional sudo elevation.
type Executor struct {
	dryRun  bool
	verbose bool
	primed  bool // whether Acquire validated sudo credentials this session
}

// New creates a new Executor with the given options.
func New(dryRun, verbose bool) *Executor {
	return &Executor{
		dryRun:  dryRun,
		verbose: verbose,
	}
}

// DryRun reports whether the executor only prints commands.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Run executes a command without sudo.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	if e.dryRun {
		e.printDryRun(name, args)
		return nil
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if e.verbose {
		fmt.Printf("Executing: %s %s\n", name, strings.Join(args, " "))
	}

	return cmd.Run()
}

// RunSudo executes a command with sudo if not already root.
func (e *Executor) RunSudo(ctx context.Context, name string, args ...string) error {
	if e.dryRun {
		e.printDryRunSudo(name, args)
		return nil
	}

	cmd, err := e.sudoCommand(ctx, name, args)
	if err != nil {
		return err
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	e.printVerboseSudo(name, args)

	return cmd.Run()
}

// RunSudoWithStderr executes a command with sudo while capturing stderr.
// It streams both stdout and stderr to the terminal while also capturing stderr
// for error analysis. Returns the captured stderr and any error.
func (e *Executor) RunSudoWithStderr(ctx context.Context, name string, args ...string) (string, error) {
	if e.dryRun {
		e.printDryRunSudo(name, args)
		return "", nil
	}

	cmd, err := e.sudoCommand(ctx, name, args)
	if err != nil {
		return "", err
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	// Capture stderr while still streaming it to terminal
	var stderrBuf bytes.Buffer
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderrBuf)

	e.printVerboseSudo(name, args)

	runErr := cmd.Run()
	return stderrBuf.String(), runErr
}

// Output runs a command and returns its stdout.
func (e *Executor) Output(ctx context.Context, name string, args ...string) (string, error) {
	if e.dryRun {
		e.printDryRun(name, args)
		return "", nil
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if e.verbose {
		fmt.Printf("Executing: %s %s\n", name, strings.Join(args, " "))
	}

	err := cmd.Run()
	return stdout.String(), err
}

// sudoCommand builds the command, elevated when the process is not root.
// After a successful Acquire the cached credentials are used
// non-interactively (sudo -n), so a background transaction never stalls on
// a password prompt.
func (e *Executor) sudoCommand(ctx context.Context, name string, args []string) (*exec.Cmd, error) {
	if isRoot() {
		return exec.CommandContext(ctx, name, args...), nil
	}
	if !hasSudo() {
		return nil, ErrNoPrivileges
	}

	sudoArgs := make([]string, 0, len(args)+2)
	if e.primed {
		sudoArgs = append(sudoArgs, "-n")
	}
	sudoArgs = append(sudoArgs, name)
	sudoArgs = append(sudoArgs, args...)
	return exec.CommandContext(ctx, "sudo", sudoArgs...), nil
}

func (e *Executor) printVerboseSudo(name string, args []string) {
	if !e.verbose {
		return
	}
	if isRoot() {
		fmt.Printf("Executing (as root): %s %s\n", name, strings.Join(args, " "))
	} else {
		fmt.Printf("Executing (with sudo): %s %s\n", name, strings.Join(args, " "))
	}
}

func (e *Executor) printDryRun(name string, args []string) {
	fmt.Printf("[dry-run] Would execute: %s %s\n", name, strings.Join(args, " "))
}

func (e *Executor) printDryRunSudo(name string, args []string) {
	if isRoot() {
		fmt.Printf("[dry-run] Would execute (as root): %s %s\n", name, strings.Join(args, " "))
	} else {
		fmt.Printf("[dry-run] Would execute (with sudo): sudo %s %s\n", name, strings.Join(args, " "))
	}
}
