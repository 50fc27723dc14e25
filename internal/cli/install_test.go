package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/hbacelar8/tecarius/internal/config"
	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/store"
)

func testSnapshot() *store.Snapshot {
	conf := &alpm.Conf{Repos: []alpm.Repo{{Name: "core"}, {Name: "extra"}}}
	syncs := map[string][]*alpm.PackageRecord{
		"core": {
			{Name: "vim", Version: "9.1", Arch: "x86_64", Source: alpm.RepoSource("core")},
			{Name: "openssl", Version: "3.3", Arch: "x86_64", Source: alpm.RepoSource("core"),
				Provides: []alpm.DepSpec{{Name: "ssl"}}},
		},
		"extra": {
			{Name: "neovim", Version: "0.10", Arch: "x86_64", Source: alpm.RepoSource("extra")},
		},
	}
	return store.NewSnapshot(conf, nil, syncs, nil)
}

func TestResolveCandidate(t *testing.T) {
	cfg = config.Default()
	cfg.General.AutoConfirm = true
	snap := testSnapshot()
	ctx := context.Background()

	t.Run("direct name", func(t *testing.T) {
		rec, err := resolveCandidate(ctx, snap, "vim")
		if err != nil {
			t.Fatalf("resolveCandidate: %v", err)
		}
		if rec.Name != "vim" || rec.Source.Repo != "core" {
			t.Errorf("resolved %s from %s, want vim from core", rec.Name, rec.Source)
		}
	})

	t.Run("capability provider", func(t *testing.T) {
		rec, err := resolveCandidate(ctx, snap, "ssl")
		if err != nil {
			t.Fatalf("resolveCandidate: %v", err)
		}
		if rec.Name != "openssl" {
			t.Errorf("resolved %s, want openssl", rec.Name)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := resolveCandidate(ctx, snap, "no-such-package")
		if !errors.Is(err, ErrPackageNotFound) {
			t.Errorf("err = %v, want ErrPackageNotFound", err)
		}
	})
}
