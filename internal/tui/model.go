package tui

import (
	"fmt"

	"github.com/hbacelar8/tecarius/internal/bridge"
	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/plan"
	"github.com/hbacelar8/tecarius/pkg/search"
	"github.com/hbacelar8/tecarius/pkg/staging"
	"github.com/hbacelar8/tecarius/pkg/store"
	"github.com/hbacelar8/tecarius/pkg/transaction"
)

// detailTab selects which dependency list the detail pane shows.
type detailTab int

const (
	tabDepends detailTab = iota
	tabOptional
	tabConflicts
	tabReplaces
	tabCount
)

func (t detailTab) String() string {
	switch t {
	case tabOptional:
		return "Optional"
	case tabConflicts:
		return "Conflicts"
	case tabReplaces:
		return "Replaces"
	}
	return "Depends"
}

// notice is the last out-of-band message shown in the status bar.
type notice struct {
	level bridge.NoticeLevel
	text  string
}

// Model holds everything the TUI renders. All package data arrives as
// bridge events; the model never touches the core directly.
type Model struct {
	bridge *bridge.Bridge
	keys   KeyMap
	styles *Styles

	width  int
	height int
	ready  bool

	state  bridge.State
	snap   *store.Snapshot
	failed []alpm.Source

	// Listing: search matches when a query is active, otherwise the
	// installed set.
	rows           []*alpm.PackageRecord
	matches        []search.Match
	query          string
	upgradableOnly bool
	cursor         int
	scroll         int

	staged map[alpm.PackageIdentity]staging.Intent

	plan *plan.TransactionPlan

	// Execution progress.
	execLines  []string
	execDone   bool
	execFailed bool
	execTotal  int
	execCount  int

	// Overlays.
	showDetails bool
	showHelp    bool
	showExec    bool
	detail      detailTab

	searching bool
	notice    notice
}

// NewModel creates the TUI model bound to a bridge.
func NewModel(b *bridge.Bridge, styles *Styles) *Model {
	return &Model{
		bridge: b,
		keys:   DefaultKeyMap(),
		styles: styles,
		staged: make(map[alpm.PackageIdentity]staging.Intent),
	}
}

// visibleHeight is the number of listing rows that fit on screen. Header,
// search bar, status bar and footer take five lines.
func (m *Model) visibleHeight() int {
	h := m.height - 5
	if h < 1 {
		h = 1
	}
	return h
}

// selected returns the record under the cursor, or nil.
func (m *Model) selected() *alpm.PackageRecord {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return m.rows[m.cursor]
	}
	return nil
}

// moveCursor moves by delta, clamping and keeping the cursor on screen.
func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}

	visible := m.visibleHeight()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	} else if m.cursor >= m.scroll+visible {
		m.scroll = m.cursor - visible + 1
	}
}

func (m *Model) cursorToTop() {
	m.cursor = 0
	m.scroll = 0
}

func (m *Model) cursorToBottom() {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = len(m.rows) - 1
	if over := len(m.rows) - m.visibleHeight(); over > 0 {
		m.scroll = over
	}
}

// rebuildRows derives the listing from the current snapshot, search
// results and upgradable filter.
func (m *Model) rebuildRows() {
	var base []*alpm.PackageRecord
	switch {
	case m.query != "" || m.searching:
		base = make([]*alpm.PackageRecord, 0, len(m.matches))
		for _, match := range m.matches {
			base = append(base, match.Record)
		}
	case m.snap != nil:
		base = m.snap.Installed()
	}

	if m.upgradableOnly && m.snap != nil {
		filtered := base[:0:0]
		for _, rec := range base {
			local := rec
			if !rec.Source.IsLocal() {
				local = m.snap.Local(rec.Name)
			}
			if local != nil && m.snap.UpdateFor(local) != nil {
				filtered = append(filtered, rec)
			}
		}
		base = filtered
	}

	m.rows = base
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.scroll > m.cursor {
		m.scroll = m.cursor
	}
}

// naturalIntent is what x should do with a record: install what is
// missing or upgradable, remove what is installed and current.
func (m *Model) naturalIntent(rec *alpm.PackageRecord) staging.Intent {
	if m.snap == nil {
		return staging.IntentInstall
	}
	local := m.snap.Local(rec.Name)
	if local == nil {
		return staging.IntentInstall
	}
	if m.snap.UpdateFor(local) != nil {
		return staging.IntentInstall
	}
	return staging.IntentRemove
}

func (m *Model) setNotice(level bridge.NoticeLevel, text string) {
	m.notice = notice{level: level, text: text}
}

// applyEvent folds one bridge event into the model.
func (m *Model) applyEvent(ev bridge.Event) {
	switch ev := ev.(type) {
	case bridge.StateChanged:
		m.state = ev.To
		if ev.To == bridge.StateExecuting {
			m.showExec = true
			m.execLines = nil
			m.execDone = false
			m.execFailed = false
			m.execCount = 0
			m.execTotal = 0
		}

	case bridge.SnapshotLoaded:
		m.snap = ev.Snapshot
		m.failed = ev.Failed
		m.rebuildRows()

	case bridge.SearchResults:
		m.matches = ev.Matches
		m.rebuildRows()

	case bridge.StagingChanged:
		m.staged = make(map[alpm.PackageIdentity]staging.Intent, len(ev.Entries))
		for _, entry := range ev.Entries {
			m.staged[entry.Identity] = entry.Intent
		}
		for _, dropped := range ev.Dropped {
			m.setNotice(bridge.NoticeWarning,
				fmt.Sprintf("dropped %s from staging: %s", dropped.Entry.Identity.Name, dropped.Reason))
		}

	case bridge.PlanReady:
		m.plan = ev.Plan

	case bridge.PlanFailed:
		m.plan = nil
		m.setNotice(bridge.NoticeError, ev.Err.Error())

	case bridge.Execution:
		m.applyExecution(ev.Event)

	case bridge.Notice:
		m.setNotice(ev.Level, ev.Text)
	}
}

func (m *Model) applyExecution(ev transaction.Event) {
	switch ev.Kind {
	case transaction.EventPackageStarted:
		verb := "installing"
		if ev.Action == plan.ActionRemove {
			verb = "removing"
		}
		m.execLines = append(m.execLines, fmt.Sprintf("%s %s", verb, ev.Package.Name))

	case transaction.EventProgress:
		m.execCount = ev.Completed
		m.execTotal = ev.Total

	case transaction.EventWarning:
		m.execLines = append(m.execLines, "warning: "+ev.Message)

	case transaction.EventDone:
		m.execDone = true
		m.execLines = append(m.execLines, "transaction complete")

	case transaction.EventFailed:
		m.execDone = true
		m.execFailed = true
		if ev.Err != nil {
			m.execLines = append(m.execLines, "failed: "+ev.Err.Error())
		} else {
			m.execLines = append(m.execLines, "failed")
		}
	}
}
