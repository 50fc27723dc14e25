package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/plan"
	"github.com/hbacelar8/tecarius/pkg/store"
)

// Table wraps tabwriter for consistent styling.
type Table struct {
	writer  *tabwriter.Writer
	headers []string
}

// NewTable creates a new table with default styling.
func NewTable(header []string) *Table {
	return NewTableWriter(os.Stdout, header)
}

// NewTableWriter creates a new table that writes to a specific writer.
func NewTableWriter(w io.Writer, header []string) *Table {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	t := &Table{
		writer:  tw,
		headers: header,
	}
	if len(header) > 0 {
		headerRow := make([]string, len(header))
		for i, h := range header {
			headerRow[i] = Bold(strings.ToUpper(h))
		}
		fmt.Fprintln(tw, strings.Join(headerRow, "\t"))
	}
	return t
}

// AddRow adds a row to the table.
func (t *Table) AddRow(row []string) {
	fmt.Fprintln(t.writer, strings.Join(row, "\t"))
}

// Render outputs the table.
func (t *Table) Render() {
	t.writer.Flush()
}

// PrintRecords prints package records in a formatted table. The snapshot
// supplies the installed markers; it may be nil.
func PrintRecords(records []*alpm.PackageRecord, snap *store.Snapshot) {
	if len(records) == 0 {
		MutedMsg("No packages found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, Bold("REPO")+"\t"+Bold("NAME")+"\t"+Bold("VERSION")+"\t"+Bold("DESCRIPTION"))

	for _, rec := range records {
		repo := PackageRepo.Sprint("[" + rec.Source.String() + "]")
		name := PackageName.Sprint(rec.Name)
		version := PackageVersion.Sprint(rec.Version)

		desc := rec.Description
		if len(desc) > 50 {
			desc = desc[:47] + "..."
		}

		if snap != nil && !rec.Source.IsLocal() && snap.Local(rec.Name) != nil {
			name = name + " " + Installed.Sprint("[installed]")
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", repo, name, version, desc)
	}

	w.Flush()
}

// PrintRecordInfo prints detailed package information. The snapshot
// supplies reverse dependencies for installed packages; it may be nil.
func PrintRecordInfo(rec *alpm.PackageRecord, snap *store.Snapshot) {
	if rec == nil {
		ErrorMsg("No package information available")
		return
	}

	HeaderMsg("Package Information")

	printField("Name", rec.Name)
	printField("Version", rec.Version)
	printField("Repository", rec.Source.String())

	if rec.Description != "" {
		printField("Description", rec.Description)
	}
	if rec.Arch != "" {
		printField("Architecture", rec.Arch)
	}
	if len(rec.Licenses) > 0 {
		printField("Licenses", strings.Join(rec.Licenses, ", "))
	}
	if len(rec.Groups) > 0 {
		printField("Groups", strings.Join(rec.Groups, ", "))
	}
	if rec.URL != "" {
		printField("URL", rec.URL)
	}
	if rec.Packager != "" {
		printField("Packager", rec.Packager)
	}
	if rec.InstalledSize > 0 {
		printField("Installed Size", alpm.HumanSize(rec.InstalledSize))
	}
	if rec.DownloadSize > 0 {
		printField("Download Size", alpm.HumanSize(rec.DownloadSize))
	}

	if len(rec.Depends) > 0 {
		deps := make([]string, len(rec.Depends))
		for i, d := range rec.Depends {
			deps[i] = d.String()
		}
		printField("Depends On", strings.Join(deps, ", "))
	}
	if len(rec.OptDepends) > 0 {
		deps := make([]string, len(rec.OptDepends))
		for i, d := range rec.OptDepends {
			deps[i] = d.String()
		}
		printField("Optional Deps", strings.Join(deps, ", "))
	}
	if len(rec.Provides) > 0 {
		provs := make([]string, len(rec.Provides))
		for i, p := range rec.Provides {
			provs[i] = p.String()
		}
		printField("Provides", strings.Join(provs, ", "))
	}
	if len(rec.Conflicts) > 0 {
		confs := make([]string, len(rec.Conflicts))
		for i, c := range rec.Conflicts {
			confs[i] = c.String()
		}
		printField("Conflicts With", strings.Join(confs, ", "))
	}

	if rec.Source.IsLocal() {
		printField("Install Reason", rec.Reason.String())
		if !rec.InstallDate.IsZero() {
			printField("Installed", rec.InstallDate.Format("2006-01-02 15:04:05"))
		}
		if snap != nil {
			if requiredBy := snap.RequiredBy(rec.Name); len(requiredBy) > 0 {
				printField("Required By", strings.Join(requiredBy, ", "))
			}
		}
	}
	if !rec.BuildDate.IsZero() {
		printField("Build Date", rec.BuildDate.Format("2006-01-02 15:04:05"))
	}
}

// printField prints a single field with formatting.
func printField(label, value string) {
	fmt.Printf("  %s: %s\n", Cyan(label), value)
}

// PrintPlan prints the transaction summary the user confirms: removals,
// additions, problems, and the size totals.
func PrintPlan(p *plan.TransactionPlan) {
	if removals := p.Removals(); len(removals) > 0 {
		HeaderMsg("Removing %d packages", len(removals))
		for _, op := range removals {
			reason := ""
			if op.Reason == plan.ReasonDependency {
				reason = Muted.Sprint(" (no longer required)")
			}
			fmt.Printf("  %s %s %s%s\n", Red(SymbolRemove), op.Record.Name, Muted.Sprint(op.Record.Version), reason)
		}
	}

	if additions := p.Additions(); len(additions) > 0 {
		HeaderMsg("Installing %d packages", len(additions))
		for _, op := range additions {
			reason := ""
			if op.Reason == plan.ReasonDependency {
				reason = Muted.Sprint(" (dependency)")
			}
			fmt.Printf("  %s %s %s%s\n", Green(SymbolAdd), op.Record.Name, PackageVersion.Sprint(op.Record.Version), reason)
		}
	}

	if len(p.Explicit) > 0 {
		HeaderMsg("Marking %d packages as explicitly installed", len(p.Explicit))
		for _, id := range p.Explicit {
			fmt.Printf("  %s %s\n", Cyan(SymbolKeep), id.Name)
		}
	}

	if len(p.Problems) > 0 {
		HeaderMsg("Problems")
		for _, problem := range p.Problems {
			ErrorMsg("%s", problem)
		}
		return
	}

	fmt.Println()
	if size := p.DownloadSize(); size > 0 {
		printField("Total Download Size", alpm.HumanSize(size))
	}
	delta := p.InstalledDelta()
	switch {
	case delta > 0:
		printField("Net Upgrade Size", alpm.HumanSize(delta))
	case delta < 0:
		printField("Disk Space Freed", alpm.HumanSize(-delta))
	}
}
