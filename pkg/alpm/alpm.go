// Package alpm reads pacman's package databases and drives the pacman
// binary for the operations that mutate the system. The read side parses
// the on-disk database format directly; the write side shells out and
// interprets pacman's output.
package alpm

import (
	"fmt"
	"time"
)

// SourceKind distinguishes the local install database from sync repositories.
type SourceKind int

const (
	SourceLocal SourceKind = iota
	SourceRepo
)

// Source identifies which database a record was read from.
type Source struct {
	Kind SourceKind
	Repo string // repository name, empty for the local database
}

// LocalSource is the source of every installed-package record.
var LocalSource = Source{Kind: SourceLocal}

// RepoSource returns the source for a named sync repository.
func RepoSource(name string) Source {
	return Source{Kind: SourceRepo, Repo: name}
}

func (s Source) IsLocal() bool {
	return s.Kind == SourceLocal
}

func (s Source) String() string {
	if s.Kind == SourceLocal {
		return "local"
	}
	return s.Repo
}

// PackageIdentity names a logical package independent of version and source.
type PackageIdentity struct {
	Name string
	Arch string
}

func (id PackageIdentity) String() string {
	if id.Arch == "" {
		return id.Name
	}
	return id.Name + " (" + id.Arch + ")"
}

// InstallReason records why a package is present in the local database.
type InstallReason int

const (
	ReasonExplicit InstallReason = iota
	ReasonDependency
)

func (r InstallReason) String() string {
	if r == ReasonDependency {
		return "dependency"
	}
	return "explicit"
}

// PackageRecord is the immutable metadata of one package in one database.
// Records are shared between snapshots and must never be mutated after
// construction.
type PackageRecord struct {
	Name        string
	Version     string
	Description string
	Arch        string
	URL         string
	Licenses    []string
	Groups      []string
	Packager    string

	BuildDate   time.Time
	InstallDate time.Time // local records only

	DownloadSize  int64 // sync records only
	InstalledSize int64

	Reason InstallReason // local records only

	Depends    []DepSpec
	OptDepends []DepSpec
	Provides   []DepSpec
	Conflicts  []DepSpec
	Replaces   []DepSpec

	Source Source
}

// Identity returns the record's logical package identity.
func (r *PackageRecord) Identity() PackageIdentity {
	return PackageIdentity{Name: r.Name, Arch: r.Arch}
}

// Satisfies reports whether this record fulfills the given dependency,
// either by its own name and version or through one of its provisions.
func (r *PackageRecord) Satisfies(dep DepSpec) bool {
	if dep.Name == r.Name && dep.matchVersion(r.Version) {
		return true
	}
	for _, prov := range r.Provides {
		if prov.Name != dep.Name {
			continue
		}
		if dep.Mod == ConstraintAny {
			return true
		}
		// A versioned requirement needs a versioned provision.
		if prov.Version != "" && dep.matchVersion(prov.Version) {
			return true
		}
	}
	return false
}

// HumanSize formats a byte count with IEC binary suffixes.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
