package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hbacelar8/tecarius/pkg/alpm"
)

func rec(name, version string, src alpm.Source, mutate ...func(*alpm.PackageRecord)) *alpm.PackageRecord {
	r := &alpm.PackageRecord{Name: name, Version: version, Arch: "x86_64", Source: src}
	for _, fn := range mutate {
		fn(r)
	}
	return r
}

func withReason(reason alpm.InstallReason) func(*alpm.PackageRecord) {
	return func(r *alpm.PackageRecord) { r.Reason = reason }
}

func withDepends(specs ...string) func(*alpm.PackageRecord) {
	return func(r *alpm.PackageRecord) { r.Depends = alpm.ParseDeps(specs) }
}

func withProvides(specs ...string) func(*alpm.PackageRecord) {
	return func(r *alpm.PackageRecord) { r.Provides = alpm.ParseDeps(specs) }
}

func testConf(repos ...string) *alpm.Conf {
	conf := &alpm.Conf{RootDir: "/", DBPath: "/var/lib/pacman/", Architecture: "x86_64"}
	for i, name := range repos {
		conf.Repos = append(conf.Repos, alpm.Repo{Name: name, Priority: i})
	}
	return conf
}

func TestSnapshotIndexes(t *testing.T) {
	conf := testConf("core", "extra")
	local := []*alpm.PackageRecord{
		rec("vim", "9.1.0-1", alpm.LocalSource, withDepends("glibc")),
		rec("glibc", "2.39-1", alpm.LocalSource, withReason(alpm.ReasonDependency)),
	}
	syncSets := map[string][]*alpm.PackageRecord{
		"core":  {rec("glibc", "2.39-2", alpm.RepoSource("core"))},
		"extra": {rec("vim", "9.1.1-1", alpm.RepoSource("extra"))},
	}

	snap := NewSnapshot(conf, local, syncSets, nil)

	if snap.Local("vim") == nil || snap.Local("glibc") == nil {
		t.Fatal("local lookup failed")
	}
	if snap.Local("nope") != nil {
		t.Error("unexpected local record")
	}
	if got := len(snap.Installed()); got != 2 {
		t.Errorf("installed count = %d", got)
	}
	if cand := snap.BestCandidate("glibc"); cand == nil || cand.Version != "2.39-2" {
		t.Errorf("best glibc candidate = %+v", cand)
	}

	// Upgrade computation: both installed records have newer candidates.
	up := snap.Upgradable()
	if len(up) != 2 {
		t.Fatalf("upgradable = %d, want 2", len(up))
	}
	if newer := snap.UpdateFor(snap.Local("vim")); newer == nil || newer.Version != "9.1.1-1" {
		t.Errorf("UpdateFor(vim) = %+v", newer)
	}
}

func TestSnapshotIdentityUniquePerSource(t *testing.T) {
	conf := testConf("core")
	local := []*alpm.PackageRecord{
		rec("dup", "1-1", alpm.LocalSource),
		rec("dup", "2-1", alpm.LocalSource),
	}
	syncSets := map[string][]*alpm.PackageRecord{
		"core": {
			rec("dup", "1-1", alpm.RepoSource("core")),
			rec("dup", "3-1", alpm.RepoSource("core")),
		},
	}

	snap := NewSnapshot(conf, local, syncSets, nil)

	seen := make(map[alpm.Source]map[string]bool)
	for _, r := range snap.Records() {
		if seen[r.Source] == nil {
			seen[r.Source] = make(map[string]bool)
		}
		if seen[r.Source][r.Name] {
			t.Fatalf("identity %s appears twice in source %s", r.Name, r.Source)
		}
		seen[r.Source][r.Name] = true
	}

	// First record wins within each source.
	if snap.Local("dup").Version != "1-1" {
		t.Errorf("local dup version = %s", snap.Local("dup").Version)
	}
}

func TestSnapshotBestCandidatePriority(t *testing.T) {
	conf := testConf("core", "extra")
	syncSets := map[string][]*alpm.PackageRecord{
		"core":  {rec("pkg", "1.0-1", alpm.RepoSource("core"))},
		"extra": {rec("pkg", "1.0-1", alpm.RepoSource("extra"))},
	}
	snap := NewSnapshot(conf, nil, syncSets, nil)

	// Equal versions: configured priority wins.
	if best := snap.BestCandidate("pkg"); best.Source.Repo != "core" {
		t.Errorf("best source = %s, want core", best.Source.Repo)
	}

	// A strictly newer version in a lower-priority repo wins.
	syncSets["extra"] = []*alpm.PackageRecord{rec("pkg", "2.0-1", alpm.RepoSource("extra"))}
	snap = NewSnapshot(conf, nil, syncSets, nil)
	if best := snap.BestCandidate("pkg"); best.Source.Repo != "extra" {
		t.Errorf("best source = %s, want extra", best.Source.Repo)
	}
}

func TestSnapshotProvidersAndOrphans(t *testing.T) {
	conf := testConf("core")
	local := []*alpm.PackageRecord{
		rec("app", "1-1", alpm.LocalSource, withDepends("libssl")),
		rec("openssl", "3.2-1", alpm.LocalSource, withReason(alpm.ReasonDependency), withProvides("libssl")),
		rec("leftover", "1-1", alpm.LocalSource, withReason(alpm.ReasonDependency)),
	}
	snap := NewSnapshot(conf, local, nil, nil)

	providers := snap.LocalProviders(alpm.ParseDep("libssl"))
	if len(providers) != 1 || providers[0].Name != "openssl" {
		t.Fatalf("providers = %v", providers)
	}
	if deps := snap.RequiredBy("openssl"); len(deps) != 1 || deps[0] != "app" {
		t.Errorf("RequiredBy(openssl) = %v", deps)
	}

	orphans := snap.Orphans()
	if len(orphans) != 1 || orphans[0].Name != "leftover" {
		t.Errorf("orphans = %v", orphans)
	}
}

// fakeDB is a DatabaseReader with scripted results.
type fakeDB struct {
	local    []*alpm.PackageRecord
	localErr error
	sync     map[string][]*alpm.PackageRecord
	syncErr  map[string]error
	delay    time.Duration
}

func (f *fakeDB) ReadLocal(ctx context.Context) ([]*alpm.PackageRecord, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.local, f.localErr
}

func (f *fakeDB) ReadSync(ctx context.Context, repo string) ([]*alpm.PackageRecord, error) {
	if err := f.syncErr[repo]; err != nil {
		return nil, err
	}
	return f.sync[repo], nil
}

func TestLoaderPartialLoad(t *testing.T) {
	conf := testConf("core", "extra")
	db := &fakeDB{
		local:   []*alpm.PackageRecord{rec("vim", "9.1-1", alpm.LocalSource)},
		sync:    map[string][]*alpm.PackageRecord{"core": {rec("vim", "9.2-1", alpm.RepoSource("core"))}},
		syncErr: map[string]error{"extra": errors.New("stale mirror")},
	}

	snap, err := NewLoader(db, conf, 0).Load(context.Background())
	if snap == nil {
		t.Fatal("partial load must still yield a snapshot")
	}
	if !IsPartialLoad(err) {
		t.Fatalf("err = %v, want partial load", err)
	}

	loadErr, _ := AsLoadError(err)
	if len(loadErr.Sources) != 1 || loadErr.Sources[0].Repo != "extra" {
		t.Errorf("failed sources = %v", loadErr.Sources)
	}
	if snap.BestCandidate("vim") == nil {
		t.Error("loaded repository data missing from snapshot")
	}
}

func TestLoaderLocalFailureIsFatal(t *testing.T) {
	db := &fakeDB{localErr: errors.New("permission denied")}
	snap, err := NewLoader(db, testConf("core"), 0).Load(context.Background())
	if snap != nil {
		t.Error("no snapshot expected when the local database is unreadable")
	}
	loadErr, ok := AsLoadError(err)
	if !ok || loadErr.Kind != LoadIO {
		t.Fatalf("err = %v, want LoadIO", err)
	}
}

func TestLoaderTimeout(t *testing.T) {
	db := &fakeDB{delay: 200 * time.Millisecond}
	snap, err := NewLoader(db, testConf(), 10*time.Millisecond).Load(context.Background())
	if snap != nil {
		t.Error("no snapshot expected on timeout")
	}
	loadErr, ok := AsLoadError(err)
	if !ok || loadErr.Kind != LoadTimedOut {
		t.Fatalf("err = %v, want LoadTimedOut", err)
	}
}
