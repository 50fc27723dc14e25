package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// IsRoot returns true if the current process is running as root.
func IsRoot() bool {
	return isRoot()
}

// HasSudo returns true if sudo is available on the system.
func HasSudo() bool {
	return hasSudo()
}

// CanElevate returns true if the process can elevate privileges.
func CanElevate() bool {
	return isRoot() || hasSudo()
}

// Acquire primes privilege escalation for the session. Running as root it
// is a no-op; otherwise it validates the sudo credential cache (sudo -v),
// which may prompt on the controlling terminal. A failure is reported as a
// denial so callers can surface it instead of crashing mid-transaction.
func (e *Executor) Acquire(ctx context.Context) error {
	if e.dryRun || isRoot() {
		return nil
	}
	if !hasSudo() {
		return ErrNoPrivileges
	}

	cmd := exec.CommandContext(ctx, "sudo", "-v")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("privilege escalation denied: %w", err)
	}

	e.primed = true
	return nil
}

func isRoot() bool {
	return os.Geteuid() == 0
}

func hasSudo() bool {
	_, err := exec.LookPath("sudo")
	return err == nil
}

type errNoPrivileges struct{}

func (e errNoPrivileges) Error() string {
	return "this operation requires root privileges, but neither running as root nor sudo is available"
}

// ErrNoPrivileges is the error returned when privileges cannot be elevated.
var ErrNoPrivileges = errNoPrivileges{}
