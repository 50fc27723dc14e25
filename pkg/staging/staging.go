// Package staging holds the user's pending package operations. Staging is
// deliberately cheap and synchronous: no dependency checking happens here,
// that is the planner's job. The set keeps insertion order for stable
// display and holds at most one intent per package identity.
package staging

import (
	"errors"
	"fmt"

	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/store"
)

// Intent is what the user wants done with a package.
type Intent int

const (
	IntentInstall Intent = iota
	IntentRemove
	IntentMarkExplicit
)

func (i Intent) String() string {
	switch i {
	case IntentRemove:
		return "remove"
	case IntentMarkExplicit:
		return "mark explicit"
	}
	return "install"
}

// ErrNotInstalled is returned when Remove or MarkExplicit targets a
// package the local database does not contain.
var ErrNotInstalled = errors.New("package is not installed")

// StageError reports a rejected staging request.
type StageError struct {
	Identity alpm.PackageIdentity
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("cannot stage %s: %s", e.Identity.Name, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Entry is one staged operation.
type Entry struct {
	Identity alpm.PackageIdentity
	Intent   Intent
}

// Dropped is a staging entry removed during revalidation, with the reason
// it no longer applies.
type Dropped struct {
	Entry  Entry
	Reason string
}

// Set is the staging set. It is owned by the interactive loop and never
// shared with background work, so it needs no locking.
type Set struct {
	order   []alpm.PackageIdentity
	entries map[alpm.PackageIdentity]Intent
}

// NewSet returns an empty staging set.
func NewSet() *Set {
	return &Set{entries: make(map[alpm.PackageIdentity]Intent)}
}

// Stage records an intent for a package, validated against the given
// snapshot. Re-staging an identity overwrites its previous intent.
//
// Install of an already-installed package stages an upgrade when a newer
// candidate exists; otherwise it becomes MarkExplicit for
// dependency-installed packages and a no-op for explicit ones. Remove and
// MarkExplicit of a package that is not installed fail with
// ErrNotInstalled and leave the set unchanged.
func (s *Set) Stage(snap *store.Snapshot, id alpm.PackageIdentity, intent Intent) error {
	local := snap.Local(id.Name)

	switch intent {
	case IntentInstall:
		if local != nil && snap.UpdateFor(local) == nil {
			if local.Reason == alpm.ReasonExplicit {
				// Installed, explicit, up to date: nothing to stage.
				return nil
			}
			intent = IntentMarkExplicit
		}
	case IntentRemove, IntentMarkExplicit:
		if local == nil {
			return &StageError{Identity: id, Err: ErrNotInstalled}
		}
	}

	s.put(id, intent)
	return nil
}

func (s *Set) put(id alpm.PackageIdentity, intent Intent) {
	if _, exists := s.entries[id]; !exists {
		s.order = append(s.order, id)
	}
	s.entries[id] = intent
}

// Unstage removes the entry for an identity, if present.
func (s *Set) Unstage(id alpm.PackageIdentity) {
	if _, exists := s.entries[id]; !exists {
		return
	}
	delete(s.entries, id)
	for i, ordered := range s.order {
		if ordered == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Get returns the staged intent for an identity.
func (s *Set) Get(id alpm.PackageIdentity) (Intent, bool) {
	intent, ok := s.entries[id]
	return intent, ok
}

// List returns the staged entries in insertion order.
func (s *Set) List() []Entry {
	entries := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, Entry{Identity: id, Intent: s.entries[id]})
	}
	return entries
}

// Len returns the number of staged entries.
func (s *Set) Len() int { return len(s.order) }

// Clear empties the set. Called after a transaction finishes or aborts.
func (s *Set) Clear() {
	s.order = nil
	s.entries = make(map[alpm.PackageIdentity]Intent)
}

// Revalidate checks every entry against a freshly loaded snapshot and
// drops the ones that no longer apply, returning them so the interface can
// report what was discarded. Stale entries must never survive a refresh:
// planning against a dangling identity is worse than losing a selection.
func (s *Set) Revalidate(snap *store.Snapshot) []Dropped {
	var dropped []Dropped
	var keepOrder []alpm.PackageIdentity

	for _, id := range s.order {
		intent := s.entries[id]
		local := snap.Local(id.Name)

		switch intent {
		case IntentInstall:
			if local == nil && snap.BestCandidate(id.Name) == nil {
				dropped = append(dropped, Dropped{
					Entry:  Entry{Identity: id, Intent: intent},
					Reason: "no longer available in any source",
				})
				delete(s.entries, id)
				continue
			}
			if local != nil && snap.UpdateFor(local) == nil {
				// Got installed (or upgraded) behind our back.
				if local.Reason == alpm.ReasonDependency {
					s.entries[id] = IntentMarkExplicit
					keepOrder = append(keepOrder, id)
					continue
				}
				dropped = append(dropped, Dropped{
					Entry:  Entry{Identity: id, Intent: intent},
					Reason: "already installed",
				})
				delete(s.entries, id)
				continue
			}
		case IntentRemove, IntentMarkExplicit:
			if local == nil {
				dropped = append(dropped, Dropped{
					Entry:  Entry{Identity: id, Intent: intent},
					Reason: "no longer installed",
				})
				delete(s.entries, id)
				continue
			}
		}

		keepOrder = append(keepOrder, id)
	}

	s.order = keepOrder
	return dropped
}
