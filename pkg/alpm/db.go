package alpm

import (
	"archive/tar"
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Database reads pacman's on-disk package databases. The local database is
// a directory of <name>-<version>/desc entries; each sync database is a
// possibly compressed tar archive with the same layout.
type Database struct {
	dbPath string
}

// NewDatabase returns a reader rooted at the given database path
// (normally the DBPath from the system configuration).
func NewDatabase(dbPath string) *Database {
	return &Database{dbPath: dbPath}
}

// ReadLocal parses every installed-package record from the local database.
func (d *Database) ReadLocal(ctx context.Context) ([]*PackageRecord, error) {
	localDir := filepath.Join(d.dbPath, "local")
	entries, err := os.ReadDir(localDir)
	if err != nil {
		return nil, fmt.Errorf("reading local database: %w", err)
	}

	var records []*PackageRecord
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}

		f, err := os.Open(filepath.Join(localDir, entry.Name(), "desc"))
		if err != nil {
			if os.IsNotExist(err) {
				continue // ALPM_DB_VERSION and friends
			}
			return nil, fmt.Errorf("reading local entry %s: %w", entry.Name(), err)
		}

		rec, err := parseDesc(f, LocalSource)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing local entry %s: %w", entry.Name(), err)
		}
		records = append(records, rec)
	}

	sortRecords(records)
	return records, nil
}

// ReadSync parses every package record from one sync repository database.
func (d *Database) ReadSync(ctx context.Context, repo string) ([]*PackageRecord, error) {
	path := filepath.Join(d.dbPath, "sync", repo+".db")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sync database %s: %w", repo, err)
	}
	defer f.Close()

	reader, cleanup, err := decompressor(f)
	if err != nil {
		return nil, fmt.Errorf("sync database %s: %w", repo, err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	source := RepoSource(repo)
	var records []*PackageRecord

	tr := tar.NewReader(reader)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sync database %s: %w", repo, err)
		}
		if header.Typeflag != tar.TypeReg || filepath.Base(header.Name) != "desc" {
			continue
		}

		rec, err := parseDesc(tr, source)
		if err != nil {
			return nil, fmt.Errorf("sync database %s, entry %s: %w", repo, header.Name, err)
		}
		records = append(records, rec)
	}

	sortRecords(records)
	return records, nil
}

// decompressor sniffs the archive's magic bytes and returns a reader for
// the uncompressed stream. Plain tar passes through untouched.
func decompressor(f *os.File) (io.Reader, func(), error) {
	magic := make([]byte, 6)
	n, _ := f.Read(magic)
	magic = magic[:n]
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, err
	}

	switch {
	case n >= 4 && magic[0] == 0x28 && magic[1] == 0xb5 && magic[2] == 0x2f && magic[3] == 0xfd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return zr, func() { zr.Close() }, nil

	case n >= 2 && magic[0] == 0x1f && magic[1] == 0x8b:
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return gzr, func() { gzr.Close() }, nil

	case n >= 6 && magic[0] == 0xfd && magic[1] == 0x37 && magic[2] == 0x7a && magic[3] == 0x58 && magic[4] == 0x5a && magic[5] == 0x00:
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("xz: %w", err)
		}
		return xzr, nil, nil
	}

	return f, nil, nil
}

// parseDesc parses one desc file: %FIELD% headers followed by one value
// per line, records separated by blank lines.
func parseDesc(r io.Reader, source Source) (*PackageRecord, error) {
	rec := &PackageRecord{Source: source}

	var field string
	var values []string
	flush := func() {
		if field != "" {
			applyDescField(rec, field, values)
		}
		field = ""
		values = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "%") && strings.HasSuffix(line, "%"):
			flush()
			field = strings.Trim(line, "%")
		case line == "":
			flush()
		default:
			values = append(values, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if rec.Name == "" || rec.Version == "" {
		return nil, fmt.Errorf("desc entry missing name or version")
	}
	return rec, nil
}

func applyDescField(rec *PackageRecord, field string, values []string) {
	first := ""
	if len(values) > 0 {
		first = values[0]
	}

	switch field {
	case "NAME":
		rec.Name = first
	case "VERSION":
		rec.Version = first
	case "DESC":
		rec.Description = strings.Join(values, " ")
	case "ARCH":
		rec.Arch = first
	case "URL":
		rec.URL = first
	case "LICENSE":
		rec.Licenses = append([]string(nil), values...)
	case "GROUPS":
		rec.Groups = append([]string(nil), values...)
	case "PACKAGER":
		rec.Packager = first
	case "BUILDDATE":
		rec.BuildDate = parseEpoch(first)
	case "INSTALLDATE":
		rec.InstallDate = parseEpoch(first)
	case "CSIZE":
		rec.DownloadSize = parseSize(first)
	case "SIZE", "ISIZE":
		rec.InstalledSize = parseSize(first)
	case "REASON":
		if first == "1" {
			rec.Reason = ReasonDependency
		}
	case "DEPENDS":
		rec.Depends = ParseDeps(values)
	case "OPTDEPENDS":
		rec.OptDepends = ParseDeps(values)
	case "PROVIDES":
		rec.Provides = ParseDeps(values)
	case "CONFLICTS":
		rec.Conflicts = ParseDeps(values)
	case "REPLACES":
		rec.Replaces = ParseDeps(values)
	}
}

func parseEpoch(s string) time.Time {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil || sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

func parseSize(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func sortRecords(records []*PackageRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
}
