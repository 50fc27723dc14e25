// Package transaction executes resolved plans against the package engine,
// streaming progress events to the caller. Execution is the one background
// unit that never cancels midway: once the first package operation starts,
// the transaction runs to Done or Failed.
package transaction

import (
	"errors"
	"fmt"

	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/plan"
)

// EventKind identifies an execution event variant.
type EventKind int

const (
	// EventProgress reports overall completion after each finished
	// operation.
	EventProgress EventKind = iota
	// EventPackageStarted marks the beginning of one package operation.
	EventPackageStarted
	// EventPackageFinished marks the successful end of one package
	// operation.
	EventPackageFinished
	// EventWarning carries a non-fatal engine message.
	EventWarning
	// EventDone terminates a successful stream.
	EventDone
	// EventFailed terminates a failed stream; Err is set.
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventPackageStarted:
		return "package started"
	case EventPackageFinished:
		return "package finished"
	case EventWarning:
		return "warning"
	case EventDone:
		return "done"
	case EventFailed:
		return "failed"
	}
	return "unknown"
}

// Event is one element of the execution stream. The stream is ordered: all
// events of an operation precede any event of a later operation, and the
// stream ends with exactly one Done or Failed.
type Event struct {
	Kind EventKind

	// Package and Action are set on PackageStarted and PackageFinished.
	Package alpm.PackageIdentity
	Action  plan.Action

	// Completed and Total are set on Progress.
	Completed int
	Total     int

	// Message is set on Warning.
	Message string

	// Err is set on Failed.
	Err *ExecutionError
}

// ErrorKind classifies an execution failure.
type ErrorKind int

const (
	ErrorEngine ErrorKind = iota
	ErrorPrivilegeDenied
	ErrorDownload
	ErrorSignature
	ErrorFileConflict
	ErrorIO
	ErrorInterrupted
	ErrorDatabaseLocked
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorPrivilegeDenied:
		return "privilege denied"
	case ErrorDownload:
		return "download failed"
	case ErrorSignature:
		return "invalid signature"
	case ErrorFileConflict:
		return "file conflict"
	case ErrorIO:
		return "i/o error"
	case ErrorInterrupted:
		return "interrupted"
	case ErrorDatabaseLocked:
		return "database locked"
	}
	return "engine error"
}

// ExecutionError is a classified transaction failure. Package is the
// operation that failed, when the failure is attributable to one.
type ExecutionError struct {
	Kind    ErrorKind
	Package alpm.PackageIdentity
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Package.Name != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Package.Name, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// classify maps engine errors onto the execution error taxonomy.
func classify(id alpm.PackageIdentity, err error) *ExecutionError {
	kind := ErrorEngine
	var engErr *alpm.EngineError
	if errors.As(err, &engErr) {
		switch engErr.Kind {
		case alpm.EngineErrorDownloadFailed:
			kind = ErrorDownload
		case alpm.EngineErrorSignatureInvalid:
			kind = ErrorSignature
		case alpm.EngineErrorFileConflict:
			kind = ErrorFileConflict
		case alpm.EngineErrorIO:
			kind = ErrorIO
		case alpm.EngineErrorPrivilegeDenied:
			kind = ErrorPrivilegeDenied
		case alpm.EngineErrorDatabaseLocked:
			kind = ErrorDatabaseLocked
		}
	}
	return &ExecutionError{Kind: kind, Package: id, Err: err}
}
