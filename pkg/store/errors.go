package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hbacelar8/tecarius/pkg/alpm"
)

// LoadErrorKind classifies a snapshot load failure.
type LoadErrorKind int

const (
	// LoadPartial means the snapshot was built, but one or more repository
	// databases could not be read. The snapshot is usable.
	LoadPartial LoadErrorKind = iota
	// LoadIO means the local database could not be read; no snapshot.
	LoadIO
	// LoadTimedOut means the load exceeded its deadline; no snapshot.
	LoadTimedOut
)

// LoadError reports why a snapshot load failed or was incomplete.
type LoadError struct {
	Kind    LoadErrorKind
	Sources []alpm.Source // failed sources, for LoadPartial
	Err     error
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case LoadPartial:
		names := make([]string, len(e.Sources))
		for i, src := range e.Sources {
			names[i] = src.String()
		}
		return fmt.Sprintf("partial load: sources unavailable: %s", strings.Join(names, ", "))
	case LoadTimedOut:
		return "snapshot load timed out"
	default:
		if e.Err != nil {
			return "snapshot load failed: " + e.Err.Error()
		}
		return "snapshot load failed"
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// AsLoadError unwraps a *LoadError if err carries one.
func AsLoadError(err error) (*LoadError, bool) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr, true
	}
	return nil, false
}

// IsPartialLoad reports whether err is a partial load, meaning the
// returned snapshot is still usable.
func IsPartialLoad(err error) bool {
	loadErr, ok := AsLoadError(err)
	return ok && loadErr.Kind == LoadPartial
}
