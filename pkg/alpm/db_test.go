package alpm

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func writeLocalEntry(t *testing.T, dbPath, dir, desc string) {
	t.Helper()
	entryDir := filepath.Join(dbPath, "local", dir)
	if err := os.MkdirAll(entryDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(entryDir, "desc"), []byte(desc), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeSyncDB(t *testing.T, dbPath, repo string, descs map[string]string) {
	t.Helper()
	syncDir := filepath.Join(dbPath, "sync")
	if err := os.MkdirAll(syncDir, 0755); err != nil {
		t.Fatal(err)
	}

	f, err := os.Create(filepath.Join(syncDir, repo+".db"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for entry, desc := range descs {
		hdr := &tar.Header{
			Name:     entry + "/desc",
			Mode:     0644,
			Size:     int64(len(desc)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(desc)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
}

const vimDesc = `%NAME%
vim

%VERSION%
9.1.0-2

%DESC%
Vi Improved, a highly configurable text editor

%ARCH%
x86_64

%REASON%
0

%DEPENDS%
glibc
libgcrypt>=1.10

%PROVIDES%
xxd
vi

%INSTALLDATE%
1700000000

%SIZE%
4200000
`

func TestReadLocal(t *testing.T) {
	dbPath := t.TempDir()
	writeLocalEntry(t, dbPath, "vim-9.1.0-2", vimDesc)
	writeLocalEntry(t, dbPath, "abc-1.0-1", "%NAME%\nabc\n\n%VERSION%\n1.0-1\n\n%REASON%\n1\n")

	records, err := NewDatabase(dbPath).ReadLocal(context.Background())
	if err != nil {
		t.Fatalf("ReadLocal() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// Sorted by name.
	if records[0].Name != "abc" || records[1].Name != "vim" {
		t.Fatalf("unexpected order: %s, %s", records[0].Name, records[1].Name)
	}
	if records[0].Reason != ReasonDependency {
		t.Errorf("abc reason = %v, want dependency", records[0].Reason)
	}

	vim := records[1]
	if vim.Version != "9.1.0-2" {
		t.Errorf("vim version = %q", vim.Version)
	}
	if !vim.Source.IsLocal() {
		t.Errorf("vim source = %v, want local", vim.Source)
	}
	if vim.Reason != ReasonExplicit {
		t.Errorf("vim reason = %v, want explicit", vim.Reason)
	}
	if len(vim.Depends) != 2 || vim.Depends[1].Mod != ConstraintGE {
		t.Errorf("vim depends = %v", vim.Depends)
	}
	if len(vim.Provides) != 2 {
		t.Errorf("vim provides = %v", vim.Provides)
	}
	if vim.InstalledSize != 4200000 {
		t.Errorf("vim size = %d", vim.InstalledSize)
	}
	if vim.InstallDate.IsZero() {
		t.Error("vim install date not parsed")
	}
}

func TestReadLocalMissing(t *testing.T) {
	_, err := NewDatabase(filepath.Join(t.TempDir(), "nope")).ReadLocal(context.Background())
	if err == nil {
		t.Fatal("expected error for missing local database")
	}
}

func TestReadSync(t *testing.T) {
	dbPath := t.TempDir()
	writeSyncDB(t, dbPath, "core", map[string]string{
		"vim-9.1.1-1": "%NAME%\nvim\n\n%VERSION%\n9.1.1-1\n\n%CSIZE%\n1000\n\n%ISIZE%\n4300000\n",
		"git-2.45-1":  "%NAME%\ngit\n\n%VERSION%\n2.45-1\n\n%DEPENDS%\ncurl\nperl\n",
	})

	records, err := NewDatabase(dbPath).ReadSync(context.Background(), "core")
	if err != nil {
		t.Fatalf("ReadSync() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Name != "git" || records[1].Name != "vim" {
		t.Fatalf("unexpected order: %s, %s", records[0].Name, records[1].Name)
	}
	if records[1].DownloadSize != 1000 || records[1].InstalledSize != 4300000 {
		t.Errorf("vim sizes = %d/%d", records[1].DownloadSize, records[1].InstalledSize)
	}
	if got := records[0].Source; got.IsLocal() || got.Repo != "core" {
		t.Errorf("git source = %v", got)
	}
}

func TestReadSyncCancelled(t *testing.T) {
	dbPath := t.TempDir()
	writeSyncDB(t, dbPath, "extra", map[string]string{
		"pkg-1-1": "%NAME%\npkg\n\n%VERSION%\n1-1\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewDatabase(dbPath).ReadSync(ctx, "extra"); err == nil {
		t.Fatal("expected context error")
	}
}

func TestParseDescRejectsIncomplete(t *testing.T) {
	_, err := parseDesc(strings.NewReader("%NAME%\norphaned\n"), LocalSource)
	if err == nil {
		t.Fatal("expected error for desc without version")
	}
}
