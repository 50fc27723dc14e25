// Package store builds and queries immutable snapshots of the package
// databases. A Snapshot merges the local install database with every
// configured sync repository at one load instant; refreshing builds a new
// Snapshot, it never mutates an existing one.
package store

import (
	"sort"
	"time"

	"github.com/hbacelar8/tecarius/pkg/alpm"
)

// Snapshot is a point-in-time, read-only view of all known packages,
// indexed for name lookup, capability resolution and upgrade computation.
// It is safe to share across goroutines.
type Snapshot struct {
	conf     *alpm.Conf
	loadedAt time.Time
	failed   []alpm.Source

	records []*alpm.PackageRecord

	local          map[string]*alpm.PackageRecord
	sync           map[string][]*alpm.PackageRecord // name -> candidates in repo priority order
	providers      map[string][]*alpm.PackageRecord // capability -> sync providers in repo priority order
	localProviders map[string][]*alpm.PackageRecord
	requiredBy     map[string][]string // local name -> names of local dependents
}

// NewSnapshot merges a local record set with per-repository record sets.
// syncSets must be keyed by repository name; ordering between repositories
// follows the configuration's priority. Duplicate identities within one
// source keep the first record seen.
func NewSnapshot(conf *alpm.Conf, local []*alpm.PackageRecord, syncSets map[string][]*alpm.PackageRecord, failed []alpm.Source) *Snapshot {
	s := &Snapshot{
		conf:           conf,
		loadedAt:       time.Now(),
		failed:         failed,
		local:          make(map[string]*alpm.PackageRecord, len(local)),
		sync:           make(map[string][]*alpm.PackageRecord),
		providers:      make(map[string][]*alpm.PackageRecord),
		localProviders: make(map[string][]*alpm.PackageRecord),
		requiredBy:     make(map[string][]string),
	}

	for _, rec := range local {
		if _, dup := s.local[rec.Name]; dup {
			continue
		}
		s.local[rec.Name] = rec
		s.records = append(s.records, rec)
		s.localProviders[rec.Name] = append(s.localProviders[rec.Name], rec)
		for _, prov := range rec.Provides {
			s.localProviders[prov.Name] = append(s.localProviders[prov.Name], rec)
		}
	}

	for _, repo := range conf.Repos {
		seen := make(map[string]bool)
		for _, rec := range syncSets[repo.Name] {
			if seen[rec.Name] {
				continue
			}
			seen[rec.Name] = true
			s.sync[rec.Name] = append(s.sync[rec.Name], rec)
			s.records = append(s.records, rec)
			s.providers[rec.Name] = append(s.providers[rec.Name], rec)
			for _, prov := range rec.Provides {
				s.providers[prov.Name] = append(s.providers[prov.Name], rec)
			}
		}
	}

	s.computeRequiredBy()
	return s
}

// computeRequiredBy builds the reverse dependency index over the local
// database. The index is derived display data, not authoritative.
func (s *Snapshot) computeRequiredBy() {
	names := make([]string, 0, len(s.local))
	for name := range s.local {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rec := s.local[name]
		for _, dep := range rec.Depends {
			for _, provider := range s.localProviders[dep.Name] {
				if provider.Satisfies(dep) {
					s.requiredBy[provider.Name] = append(s.requiredBy[provider.Name], rec.Name)
				}
			}
		}
	}
}

// Conf returns the configuration the snapshot was loaded against.
func (s *Snapshot) Conf() *alpm.Conf { return s.conf }

// LoadedAt returns the snapshot's creation time.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// FailedSources lists the sources that could not be read when the snapshot
// was built. Non-empty after a partial load.
func (s *Snapshot) FailedSources() []alpm.Source { return s.failed }

// Records returns every record in the snapshot: local records first (by
// name), then each repository's records in priority order.
func (s *Snapshot) Records() []*alpm.PackageRecord { return s.records }

// Local returns the installed record with the given name, or nil.
func (s *Snapshot) Local(name string) *alpm.PackageRecord { return s.local[name] }

// Installed returns every installed record in name order.
func (s *Snapshot) Installed() []*alpm.PackageRecord {
	installed := make([]*alpm.PackageRecord, 0, len(s.local))
	for _, rec := range s.records {
		if rec.Source.IsLocal() {
			installed = append(installed, rec)
		}
	}
	return installed
}

// Candidates returns the sync records with the given name, in repository
// priority order.
func (s *Snapshot) Candidates(name string) []*alpm.PackageRecord { return s.sync[name] }

// BestCandidate returns the preferred sync record for a name: highest
// version first, repository priority breaking ties. Nil when no repository
// carries the package.
func (s *Snapshot) BestCandidate(name string) *alpm.PackageRecord {
	var best *alpm.PackageRecord
	for _, cand := range s.sync[name] {
		// Candidates arrive in priority order, so a strict version win is
		// the only way a later repo overtakes an earlier one.
		if best == nil || alpm.VerCmp(cand.Version, best.Version) > 0 {
			best = cand
		}
	}
	return best
}

// Providers returns the sync records satisfying the given dependency, in
// repository priority order.
func (s *Snapshot) Providers(dep alpm.DepSpec) []*alpm.PackageRecord {
	var out []*alpm.PackageRecord
	for _, rec := range s.providers[dep.Name] {
		if rec.Satisfies(dep) {
			out = append(out, rec)
		}
	}
	return out
}

// LocalProviders returns the installed records satisfying the given
// dependency.
func (s *Snapshot) LocalProviders(dep alpm.DepSpec) []*alpm.PackageRecord {
	var out []*alpm.PackageRecord
	for _, rec := range s.localProviders[dep.Name] {
		if rec.Satisfies(dep) {
			out = append(out, rec)
		}
	}
	return out
}

// UpdateFor returns the best sync candidate strictly newer than the given
// installed record, or nil when the record is up to date.
func (s *Snapshot) UpdateFor(rec *alpm.PackageRecord) *alpm.PackageRecord {
	best := s.BestCandidate(rec.Name)
	if best == nil || alpm.VerCmp(best.Version, rec.Version) <= 0 {
		return nil
	}
	return best
}

// Upgradable returns every installed record with a newer sync candidate,
// in name order.
func (s *Snapshot) Upgradable() []*alpm.PackageRecord {
	var out []*alpm.PackageRecord
	for _, rec := range s.Installed() {
		if s.UpdateFor(rec) != nil {
			out = append(out, rec)
		}
	}
	return out
}

// RequiredBy returns the names of installed packages depending on the
// named installed package.
func (s *Snapshot) RequiredBy(name string) []string { return s.requiredBy[name] }

// Orphans returns installed-as-dependency records nothing depends on
// anymore, in name order.
func (s *Snapshot) Orphans() []*alpm.PackageRecord {
	var out []*alpm.PackageRecord
	for _, rec := range s.Installed() {
		if rec.Reason == alpm.ReasonDependency && len(s.requiredBy[rec.Name]) == 0 {
			out = append(out, rec)
		}
	}
	return out
}
