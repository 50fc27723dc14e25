package cli

import "errors"

var (
	// ErrNoPackages is returned when no packages are specified.
	ErrNoPackages = errors.New("no packages specified")

	// ErrPackageNotFound is returned when a package cannot be found in
	// any configured database.
	ErrPackageNotFound = errors.New("package not found")

	// ErrUnresolvable is returned when the plan carries problems and
	// cannot be executed.
	ErrUnresolvable = errors.New("transaction cannot be resolved")

	// ErrAborted is returned when the user aborts an operation.
	ErrAborted = errors.New("operation aborted by user")
)
