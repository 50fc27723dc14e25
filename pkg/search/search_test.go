package search

import (
	"context"
	"reflect"
	"testing"

	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/store"
)

func snapWith(t *testing.T, localNames []string, syncNames []string) *store.Snapshot {
	t.Helper()
	conf := &alpm.Conf{Repos: []alpm.Repo{{Name: "core", Priority: 0}}}

	var local []*alpm.PackageRecord
	for _, name := range localNames {
		local = append(local, &alpm.PackageRecord{
			Name: name, Version: "1-1", Source: alpm.LocalSource,
			Description: "the " + name + " package",
		})
	}
	var sync []*alpm.PackageRecord
	for _, name := range syncNames {
		sync = append(sync, &alpm.PackageRecord{
			Name: name, Version: "1-1", Source: alpm.RepoSource("core"),
			Description: "the " + name + " package",
		})
	}

	return store.NewSnapshot(conf, local, map[string][]*alpm.PackageRecord{"core": sync}, nil)
}

func names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Record.Name
	}
	return out
}

func TestMatchScoreSubsequence(t *testing.T) {
	tests := []struct {
		candidate, query string
		want             bool
	}{
		{"firefox", "fx", true},
		{"fox", "fx", true},
		{"flux", "fx", true},
		{"firefox", "xf", false},
		{"firefox", "", true},
		{"Firefox", "fire", true}, // case-insensitive
		{"git", "github", false},
	}

	for _, tt := range tests {
		if _, ok := MatchScore(tt.candidate, tt.query); ok != tt.want {
			t.Errorf("MatchScore(%q, %q) matched = %v, want %v", tt.candidate, tt.query, ok, tt.want)
		}
	}
}

func TestMatchScoreOrdering(t *testing.T) {
	contiguous, _ := MatchScore("firefox", "fire")
	scattered, _ := MatchScore("fxixrxe", "fire") // no contiguous runs
	if contiguous <= scattered {
		t.Errorf("contiguous run (%d) must outscore scattered match (%d)", contiguous, scattered)
	}

	atStart, _ := MatchScore("vim", "vi")
	inMiddle, _ := MatchScore("avid", "vi")
	if atStart <= inMiddle {
		t.Errorf("match at start (%d) must outscore later match (%d)", atStart, inMiddle)
	}

	exactCase, _ := MatchScore("CMake", "CM")
	foldedCase, _ := MatchScore("cmake", "CM")
	if exactCase <= foldedCase {
		t.Errorf("case-identical match (%d) must outscore folded match (%d)", exactCase, foldedCase)
	}
}

func TestFilterDeterministicRanking(t *testing.T) {
	snap := snapWith(t, []string{"firefox", "fox", "flux"}, nil)

	first, err := Filter(context.Background(), snap, "fx", ScopeAll)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 3 {
		t.Fatalf("matches = %v, want all three", names(first))
	}

	// firefox must rank no lower than flux.
	rank := map[string]int{}
	for i, m := range first {
		rank[m.Record.Name] = i
	}
	if rank["firefox"] > rank["flux"] {
		t.Errorf("firefox ranked below flux: %v", names(first))
	}

	// Identical inputs, identical ranking.
	for i := 0; i < 10; i++ {
		again, err := Filter(context.Background(), snap, "fx", ScopeAll)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(names(first), names(again)) {
			t.Fatalf("ranking not reproducible: %v vs %v", names(first), names(again))
		}
	}
}

func TestFilterScopes(t *testing.T) {
	snap := snapWith(t, []string{"vim"}, []string{"vim-runtime", "neovim"})

	all, _ := Filter(context.Background(), snap, "vim", ScopeAll)
	if len(all) != 3 {
		t.Errorf("ScopeAll matches = %v", names(all))
	}

	installed, _ := Filter(context.Background(), snap, "vim", ScopeInstalledOnly)
	if len(installed) != 1 || installed[0].Record.Name != "vim" {
		t.Errorf("ScopeInstalledOnly matches = %v", names(installed))
	}
}

func TestFilterDescriptionScope(t *testing.T) {
	snap := snapWith(t, nil, []string{"ripgrep"})

	// "package" only appears in the description.
	byName, _ := Filter(context.Background(), snap, "package", ScopeAll)
	if len(byName) != 0 {
		t.Errorf("ScopeAll must not match descriptions: %v", names(byName))
	}

	byDesc, _ := Filter(context.Background(), snap, "package", ScopeNameAndDescription)
	if len(byDesc) != 1 {
		t.Errorf("ScopeNameAndDescription matches = %v", names(byDesc))
	}

	// Name hits outrank description hits.
	snap = snapWith(t, nil, []string{"grep", "ripgrep"})
	matches, _ := Filter(context.Background(), snap, "grep", ScopeNameAndDescription)
	if len(matches) < 2 || matches[0].Record.Name != "grep" {
		t.Errorf("ranking = %v, want grep first", names(matches))
	}
}

func TestFilterEmptyQuery(t *testing.T) {
	snap := snapWith(t, []string{"b", "a"}, nil)
	matches, err := Filter(context.Background(), snap, "", ScopeAll)
	if err != nil {
		t.Fatal(err)
	}
	// Snapshot order, untouched.
	if len(matches) != 2 {
		t.Fatalf("matches = %v", names(matches))
	}
}

func TestFilterCancelled(t *testing.T) {
	snap := snapWith(t, []string{"vim"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Filter(ctx, snap, "v", ScopeAll); err == nil {
		t.Fatal("expected context error")
	}
}
